// Package animation talks to the external Manim rendering service: job
// submission, status checks and result polling. The status path is
// deliberately soft: anything short of an explicit error from the service
// reads as "still processing", because the render farm's status endpoint
// lags behind the video files it writes.
package animation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is the public tunnel of the rendering service.
const DefaultBaseURL = "https://absolute-seriously-shrew.ngrok-free.app"

type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: normalizeBaseURL(baseURL),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type GenerateRequest struct {
	Prompt     string `json:"prompt"`
	Complexity int    `json:"complexity,omitempty"`
}

type GenerateResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type JobResult struct {
	JobID           string `json:"job_id"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
	VideoURL        string `json:"video_url,omitempty"`
	StillProcessing bool   `json:"still_processing,omitempty"`
}

// Generate submits a new animation job.
func (c *Client) Generate(ctx context.Context, prompt string, complexity int) (*GenerateResponse, error) {
	body, err := json.Marshal(GenerateRequest{Prompt: prompt, Complexity: complexity})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach rendering service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rendering service returned %d: %s", resp.StatusCode, msg)
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode generate response: %w", err)
	}
	return &out, nil
}

// JobStatus reports on a submitted job. The video file is probed directly
// first; when it exists the job is done regardless of what the status
// endpoint says. Status endpoint failures degrade to still-processing
// rather than erroring out.
func (c *Client) JobStatus(ctx context.Context, jobID string) *JobResult {
	if c.videoExists(ctx, jobID) {
		return &JobResult{JobID: jobID, Success: true, VideoURL: c.VideoURL(jobID)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/"+jobID, nil)
	if err != nil {
		return &JobResult{JobID: jobID, StillProcessing: true}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("status check failed", zap.String("jobId", jobID), zap.Error(err))
		return &JobResult{
			JobID:           jobID,
			StillProcessing: true,
			Error:           "Could not determine status, but animation may still be processing",
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &JobResult{JobID: jobID, StillProcessing: true}
	}

	var out JobResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn("unparsable status response", zap.String("jobId", jobID), zap.Error(err))
		return &JobResult{JobID: jobID, StillProcessing: true}
	}
	return &out
}

// VideoURL returns where the finished video for a job is served.
func (c *Client) VideoURL(jobID string) string {
	return fmt.Sprintf("%s/videos/%s.mp4", c.baseURL, jobID)
}

func (c *Client) videoExists(ctx context.Context, jobID string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.VideoURL(jobID), nil)
	if err != nil {
		return false
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func normalizeBaseURL(raw string) string {
	raw = strings.TrimRight(raw, "/")
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + strings.TrimLeft(raw, "/")
	}
	return raw
}
