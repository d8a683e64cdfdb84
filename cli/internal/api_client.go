package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/devilmonastery/eventdesk/internal/api"
	"github.com/devilmonastery/eventdesk/internal/client"
)

// sessionExpiredHint is shown once when the stored session can no longer be refreshed
const sessionExpiredHint = "Session expired, please run 'eventdesk auth login'"

// newAPIService builds the API client for the current context. Tokens come
// from the context's credentials backend; a lost session prints a hint to
// notice instead of redirecting anywhere. log must not carry a component
// attribute yet.
func newAPIService(config *Config, log *slog.Logger, notice io.Writer) (*api.Service, func() error, error) {
	ctx, err := config.GetCurrentContext()
	if err != nil {
		return nil, nil, err
	}
	serverURL, err := config.ServerURL()
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := openTokenStore(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open credentials: %w", err)
	}

	c, err := client.New(serverURL,
		client.WithTokenStore(store),
		client.WithLogger(log.With("component", "api_client")),
		client.WithCacheTTL(ctx.cacheTTL()),
		client.WithUserAgent("eventdesk-cli/" + client.Version),
		client.WithRedirect(func() {
			fmt.Fprintln(notice, sessionExpiredHint)
		}),
	)
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}

	return api.New(c), closeStore, nil
}
