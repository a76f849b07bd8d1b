package animation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// 30 attempts at 3-second intervals, 1.5 minutes before giving up.
	defaultInterval    = 3 * time.Second
	defaultMaxAttempts = 30

	// The status endpoint is unreliable early in a job's life; the direct
	// video probe only kicks in after this many attempts.
	directProbeAfter = 5
)

// Poll watches a job until it produces a video URL, reports an error, or
// runs out of attempts. Interval and maxAttempts fall back to the service
// defaults when zero.
func (c *Client) Poll(ctx context.Context, jobID string, interval time.Duration, maxAttempts int) (string, error) {
	if interval <= 0 {
		interval = defaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		c.logger.Debug("status check",
			zap.String("jobId", jobID),
			zap.Int("attempt", attempt))

		if attempt > directProbeAfter && c.videoExists(ctx, jobID) {
			return c.VideoURL(jobID), nil
		}

		res := c.JobStatus(ctx, jobID)
		switch {
		case res.Success:
			if res.VideoURL != "" {
				return res.VideoURL, nil
			}
			return c.VideoURL(jobID), nil
		case res.Error != "":
			// Any reported error ends the poll, even when the job may in
			// fact still be processing.
			return "", fmt.Errorf("animation failed: %s", res.Error)
		}
	}

	return "", fmt.Errorf("animation not ready after %d attempts", maxAttempts)
}
