package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/service"
)

const (
	refreshWindow    = 30 * time.Minute
	concurrencyLimit = 10
)

type TokenRefreshJob struct {
	ps service.PlatformService
}

func NewTokenRefreshJob(ps service.PlatformService) *TokenRefreshJob {
	return &TokenRefreshJob{
		ps: ps,
	}
}

// RefreshTokens renews every LinkedIn token that expires within the refresh
// window and returns once all refreshes have finished.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	accounts, err := c.ps.ListExpiring(ctx, refreshWindow)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.ps.RefreshLink(ctx, acc); err != nil {
				slog.Info("Unable to refresh tokens for LinkedIn", "user_id", acc.UserID, "error", err)
			}
		}(acc)
	}

	wg.Wait()
}
