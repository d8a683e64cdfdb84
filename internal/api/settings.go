package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/devilmonastery/eventdesk/internal/client"
	"github.com/devilmonastery/eventdesk/internal/domain/entities"
	"github.com/devilmonastery/eventdesk/internal/pkg/timeutil"
)

const settingsPath = "/api/settings"

// SettingsService reads and edits venue settings
type SettingsService struct {
	c *client.Client
}

func (s *SettingsService) Get(ctx context.Context) (*entities.Settings, error) {
	return client.Get[*entities.Settings](ctx, s.c, settingsPath, nil)
}

// Update replaces the settings document
func (s *SettingsService) Update(ctx context.Context, in entities.Settings) (*entities.Settings, error) {
	if in.Timezone != "" && !timeutil.IsValidTimezone(in.Timezone) {
		return nil, fmt.Errorf("unknown timezone %q", in.Timezone)
	}
	if in.DepositPercent < 0 || in.DepositPercent > 100 {
		return nil, fmt.Errorf("deposit percent must be between 0 and 100")
	}
	return mutate[*entities.Settings](ctx, s.c, http.MethodPut, settingsPath, in)
}
