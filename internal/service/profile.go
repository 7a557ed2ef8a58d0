package service

import (
	"context"
	"fmt"

	"hub/internal/api"
	"hub/internal/models"
)

// Profiles reads the signed-in user's preferences. The server scopes the
// list to the current user, so it holds at most one entry.
type Profiles struct {
	res *api.Resource[models.Profile]
}

func NewProfiles(client *api.Client) *Profiles {
	return &Profiles{res: api.NewResource[models.Profile](client, "profiles")}
}

// Current returns the user's profile; ok is false when none was created yet.
func (s *Profiles) Current(ctx context.Context) (p models.Profile, ok bool, err error) {
	items, err := s.res.List(ctx, nil)
	if err != nil {
		return models.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}
	if len(items) == 0 {
		return models.Profile{}, false, nil
	}
	return items[0], true, nil
}
