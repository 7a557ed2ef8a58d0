package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"hub/internal/models"
	"hub/internal/session"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.Session) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess := session.New(nil)
	return New(srv.URL+"/api", sess), sess
}

func login(t *testing.T, sess *session.Session) {
	t.Helper()
	if err := sess.Set(context.Background(), "acc-1", "ref-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
}

func TestLogin(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token/" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not carry a bearer token")
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "ada" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"No active account found with the given credentials"}`))
			return
		}
		w.Write([]byte(`{"access":"acc","refresh":"ref"}`))
	})

	if err := c.Login(context.Background(), "ada", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	tok, err := sess.Token()
	if err != nil || tok.AccessToken != "acc" || tok.RefreshToken != "ref" {
		t.Fatalf("expected session to hold the new tokens, got %+v (%v)", tok, err)
	}
}

func TestLogin_InvalidCredentialsKeepsSession(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	login(t, sess)

	err := c.Login(context.Background(), "ada", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if !sess.Authenticated() {
		t.Error("a failed login must not clear anything")
	}
	if UserMessage(err) != "Invalid username or password." {
		t.Errorf("unexpected message %q", UserMessage(err))
	}
}

func TestDo_SendsBearerToken(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer acc-1" {
			t.Errorf("expected bearer header, got %q", got)
		}
		w.Write([]byte(`{"id":1,"username":"ada","first_name":"Ada","last_name":"Lovelace"}`))
	})
	login(t, sess)

	u, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if u.DisplayName() != "Ada Lovelace" {
		t.Errorf("unexpected user %+v", u)
	}
}

func TestDo_UnauthorizedClearsSession(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
	})
	login(t, sess)

	_, err := NewResource[models.Task](c, "tasks").List(context.Background(), nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if sess.Authenticated() {
		t.Error("401 on a protected endpoint must clear the session")
	}
}

func TestDo_WithoutSessionIsUnauthorized(t *testing.T) {
	called := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := NewResource[models.Task](c, "tasks").List(context.Background(), nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if called {
		t.Error("no request should be sent without a token")
	}
}

func TestDo_ClientErrorIsVerbatim(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"title":["This field may not be blank."]}`))
	})
	login(t, sess)

	_, err := NewResource[models.Task](c, "tasks").Create(context.Background(), map[string]string{"title": ""})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.StatusCode != 400 || !strings.Contains(apiErr.Body, "may not be blank") {
		t.Errorf("unexpected error %+v", apiErr)
	}
	msg := UserMessage(err)
	if !strings.Contains(msg, "400") || !strings.Contains(msg, "may not be blank") {
		t.Errorf("message should carry status and body, got %q", msg)
	}
	if !sess.Authenticated() {
		t.Error("a 400 must not clear the session")
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	sess := session.New(nil)
	login(t, sess)
	c := New(base, sess)

	_, err := NewResource[models.Task](c, "tasks").List(context.Background(), nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if UserMessage(err) != "Network error: check your connection." {
		t.Errorf("unexpected message %q", UserMessage(err))
	}
	if !sess.Authenticated() {
		t.Error("network errors must not clear the session")
	}
}

func TestResource_RoutesAndQuery(t *testing.T) {
	var seen []string
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.RequestURI())
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[{"id":1,"subject":"hi","account":2}]`))
		case http.MethodPatch:
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"is_read":true}` {
				t.Errorf("patch should carry only the changed field, got %s", body)
			}
			w.Write([]byte(`{"id":1,"subject":"hi","is_read":true}`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost:
			w.Write([]byte(`{"status":"ok","imported":4}`))
		}
	})
	login(t, sess)
	ctx := context.Background()
	res := NewResource[models.EmailMessage](c, "email-messages")

	msgs, err := res.List(ctx, url.Values{"account": {"2"}})
	if err != nil || len(msgs) != 1 || msgs[0].Account != 2 {
		t.Fatalf("List: %v %+v", err, msgs)
	}
	updated, err := res.Update(ctx, 1, map[string]any{"is_read": true})
	if err != nil || !updated.IsRead {
		t.Fatalf("Update: %v %+v", err, updated)
	}
	if err := res.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var result models.SyncResult
	if err := NewResource[models.EmailAccount](c, "email-accounts").Action(ctx, 2, "sync", nil, &result); err != nil {
		t.Fatalf("Action: %v", err)
	}
	if result.Imported != 4 {
		t.Errorf("expected 4 imported, got %d", result.Imported)
	}

	expected := []string{
		"GET /api/email-messages/?account=2",
		"PATCH /api/email-messages/1/",
		"DELETE /api/email-messages/1/",
		"POST /api/email-accounts/2/sync/",
	}
	if strings.Join(seen, "\n") != strings.Join(expected, "\n") {
		t.Errorf("unexpected requests:\n%s", strings.Join(seen, "\n"))
	}
}

func TestResource_ListPaginatedEnvelope(t *testing.T) {
	c, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":2,"next":null,"results":[{"id":1,"name":"Ada"},{"id":2,"name":"Grace"}]}`))
	})
	login(t, sess)

	contacts, err := NewResource[models.Contact](c, "contacts").List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(contacts) != 2 || contacts[1].Name != "Grace" {
		t.Errorf("unexpected contacts %+v", contacts)
	}
}
