package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"hub/internal/api"
	"hub/internal/collection"
	"hub/internal/models"
	"hub/internal/view"
)

// MessageView configures the engine for the inbox. A message that leaves
// the visible set drops the selection back to the list.
func MessageView(pageSize int) view.Config[models.EmailMessage] {
	return view.Config[models.EmailMessage]{
		ID:   func(m models.EmailMessage) int64 { return m.ID },
		When: func(m models.EmailMessage) string { return m.SentAt },
		Text: func(m models.EmailMessage) []string {
			return []string{m.Subject, m.FromEmail, m.ToEmails, m.BodyText}
		},
		Categories: map[string]func(models.EmailMessage) []string{
			"account": func(m models.EmailMessage) []string {
				return one(strconv.FormatInt(m.Account, 10))
			},
			"folder": func(m models.EmailMessage) []string { return one(m.Folder) },
			"read": func(m models.EmailMessage) []string {
				return one(strconv.FormatBool(m.IsRead))
			},
		},
		PageSize: pageSize,
		Policy:   view.ClearOnMissing,
	}
}

// SyncError is a sync the backend attempted and reported as failed.
type SyncError struct {
	AccountID int64
	Detail    string
	Err       error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync account %d: %s", e.AccountID, e.Detail)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

type Mail struct {
	*Domain[models.EmailMessage]
	accounts *api.Resource[models.EmailAccount]
}

func NewMail(client *api.Client, pageSize int) *Mail {
	return &Mail{
		Domain: &Domain[models.EmailMessage]{
			Name:     "mail",
			Resource: api.NewResource[models.EmailMessage](client, "email-messages"),
			View:     MessageView(pageSize),
			Options:  collection.Options{Name: "mail"},
		},
		accounts: api.NewResource[models.EmailAccount](client, "email-accounts"),
	}
}

// Accounts lists the configured mail accounts.
func (s *Mail) Accounts(ctx context.Context) ([]models.EmailAccount, error) {
	return s.accounts.List(ctx, nil)
}

// MessageQuery builds the server-side list filter. Zero or empty values
// are left out.
func MessageQuery(accountID int64, folder string, unreadOnly bool) url.Values {
	q := url.Values{}
	if accountID > 0 {
		q.Set("account", strconv.FormatInt(accountID, 10))
	}
	if folder != "" {
		q.Set("folder", folder)
	}
	if unreadOnly {
		q.Set("is_read", "false")
	}
	return q
}

// UseAccount points c at one account's messages; 0 means all accounts.
// Reloads in flight for the previous account are discarded.
func (s *Mail) UseAccount(c *collection.Collection[models.EmailMessage], accountID int64) {
	c.SetQuery(MessageQuery(accountID, "", false))
}

// Sync asks the backend to pull new mail for an account.
func (s *Mail) Sync(ctx context.Context, accountID int64) (models.SyncResult, error) {
	var result models.SyncResult
	err := s.accounts.Action(ctx, accountID, "sync", nil, &result)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			var body models.SyncResult
			if json.Unmarshal([]byte(apiErr.Body), &body) == nil && body.Detail != "" {
				return result, &SyncError{AccountID: accountID, Detail: body.Detail, Err: err}
			}
		}
		return result, err
	}
	if result.Status != "" && result.Status != "ok" {
		return result, &SyncError{AccountID: accountID, Detail: result.Detail}
	}
	return result, nil
}

// Analyze asks the backend to derive tasks and notes from a message.
func (s *Mail) Analyze(ctx context.Context, messageID int64) (models.AnalysisResult, error) {
	var result models.AnalysisResult
	err := s.Resource.Action(ctx, messageID, "analyze", nil, &result)
	return result, err
}

// UnreadCount counts unread messages, for one account or all when 0.
func (s *Mail) UnreadCount(ctx context.Context, accountID int64) (int, error) {
	msgs, err := s.Resource.List(ctx, MessageQuery(accountID, "", true))
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}
