package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neural-trinity/chatverse/internal/animation"
	"github.com/neural-trinity/chatverse/internal/models"
	"github.com/neural-trinity/chatverse/internal/prompt"
	"github.com/neural-trinity/chatverse/internal/upstream"
	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

const (
	versionHeader = "3.7.2"

	// Emitted into a still-open stream when the upstream dies mid-response.
	// The client cannot tell it apart from model output; it lands in the
	// saved transcript verbatim.
	streamWarningPrefix = "⚠️ An unexpected error occurred while generating the response. "

	defaultUsername = "GaragaKarthikeya"
)

type Handler struct {
	streamer upstream.Streamer
	anim     *animation.Client
	logger   *zap.Logger
	username string
	now      func() time.Time
	encoder  *tiktoken.Tiktoken
}

func NewHandler(streamer upstream.Streamer, anim *animation.Client, logger *zap.Logger, username string) *Handler {
	if username == "" {
		username = defaultUsername
	}

	// Rough token estimates only; Gemini does not use this vocabulary but
	// the order of magnitude is what the monitoring line needs.
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("token estimator unavailable", zap.Error(err))
	}

	return &Handler{
		streamer: streamer,
		anim:     anim,
		logger:   logger,
		username: username,
		now:      time.Now,
		encoder:  encoder,
	}
}

type ChatRequest struct {
	Message  string           `json:"message"`
	History  []models.Message `json:"history"`
	Username string           `json:"username,omitempty"`
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid or missing message"})
		return
	}

	username := req.Username
	if username == "" {
		username = h.username
	}

	requestID := uuid.NewString()
	enhanced := prompt.Enhance(req.Message, username, h.now())
	history := prompt.FormatHistory(req.History)

	fields := []zap.Field{
		zap.String("requestId", requestID),
		zap.String("user", username),
		zap.String("category", string(prompt.Classify(req.Message))),
		zap.Int("messageLength", len(req.Message)),
		zap.Int("historyTurns", len(history)),
	}
	if h.encoder != nil {
		fields = append(fields, zap.Int("promptTokens", len(h.encoder.Encode(enhanced, nil, nil))))
	}
	h.logger.Info("processing chat request", fields...)

	flusher, _ := w.(http.Flusher)
	streaming := false

	err := h.streamer.StreamMessage(r.Context(), history, enhanced, func(fragment string) error {
		if !streaming {
			streaming = true
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("X-Trinity-Version", versionHeader)
			w.Header().Set("X-Processed-By", "Neural-Trinity-Edge")
		}
		if _, err := w.Write([]byte(fragment)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		h.logger.Error("upstream stream failed",
			zap.String("requestId", requestID),
			zap.Bool("midStream", streaming),
			zap.Error(err))

		if !streaming {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Failed to process your request",
				"details": err.Error(),
			})
			return
		}

		// The stream is already open as text/plain; the only channel left
		// is an in-band warning fragment before closing.
		w.Write([]byte(streamWarningPrefix + err.Error()))
		if flusher != nil {
			flusher.Flush()
		}
		return
	}

	if !streaming {
		// Upstream finished without producing any text; still a success.
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Trinity-Version", versionHeader)
	}
}

func (h *Handler) HandleAnimationStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "error": "Method not allowed"})
		return
	}

	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Missing job ID"})
		return
	}

	res := h.anim.JobStatus(r.Context(), jobID)
	switch {
	case res.Success:
		videoURL := res.VideoURL
		if videoURL == "" {
			videoURL = h.anim.VideoURL(jobID)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "videoUrl": videoURL})
	case res.Error != "":
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": res.Error})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "processing": true})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
