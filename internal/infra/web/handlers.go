package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"gamenews-web-memory/internal/domain"
	"gamenews-web-memory/internal/usecase"
)

// postRefPattern matches the document reference carried by post-creation
// events, e.g. "projects/p/databases/(default)/documents/posts/abc-123".
var postRefPattern = regexp.MustCompile(`projects/[^/]+/databases/\(default\)/documents/posts/([\w-]+)`)

// eventHandler receives post-creation events. The contract with the event
// source is deliberately forgiving: anything that is not an internal failure
// answers 200 so the source never retries on payload-shape grounds.
func eventHandler(queueUC usecase.QueueUseCase, enabled bool, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !enabled {
			w.WriteHeader(http.StatusOK)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusInternalServerError)
			return
		}

		m := postRefPattern.FindSubmatch(body)
		if m == nil {
			log.Debug().Msg("event without a post reference, ignoring")
			w.WriteHeader(http.StatusOK)
			return
		}
		postID := string(m[1])

		if err := queueUC.EnqueueForPost(r.Context(), postID); err != nil {
			log.Error().Err(err).Str("post_id", postID).Msg("enqueue failed")
			http.Error(w, "Failed to enqueue", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

type jobStatusResponse struct {
	JobID       string     `json:"job_id"`
	PostID      string     `json:"post_id"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	LastError   string     `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// jobStatusHandler serves the operator view of a post's memory job.
func jobStatusHandler(queueUC usecase.QueueUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID := chi.URLParam(r, "postID")

		job, err := queueUC.JobStatus(r.Context(), postID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "No job for post", http.StatusNotFound)
				return
			}
			log.Error().Err(err).Str("post_id", postID).Msg("job status lookup failed")
			http.Error(w, "Failed to load job", http.StatusInternalServerError)
			return
		}

		resp := jobStatusResponse{
			JobID:       job.ID,
			PostID:      job.PostID,
			Status:      string(job.Status),
			Attempts:    job.Attempts,
			LastError:   job.LastError,
			CreatedAt:   job.CreatedAt,
			ProcessedAt: job.ProcessedAt,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
