package api

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/itamarw/gosurf-bot/internal/bot"
	"github.com/itamarw/gosurf-bot/internal/metrics"
	"github.com/itamarw/gosurf-bot/internal/queue"
)

// JobHandler consumes one decoded job. The dispatcher satisfies this; it
// never returns an error because once a job is accepted every failure is
// converted into reply text.
type JobHandler interface {
	Handle(ctx context.Context, job bot.Job)
}

// WorkerServer receives Pub/Sub push deliveries. Response codes drive the
// queue's redelivery: only a body that is not a push envelope at all earns
// a 400; an envelope carrying an undecodable job is acknowledged because
// redelivery would fail identically.
type WorkerServer struct {
	router  chi.Router
	handler JobHandler
	logger  *zap.Logger
}

// NewWorkerServer wires routes and middleware.
func NewWorkerServer(handler JobHandler, logger *zap.Logger) *WorkerServer {
	metrics.Init()
	s := &WorkerServer{
		handler: handler,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))

	r.Get("/healthz", healthz)
	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.Post("/", s.receive)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *WorkerServer) Handler() http.Handler {
	return s.router
}

func (s *WorkerServer) receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	envelope, err := queue.ParsePushEnvelope(body)
	if err != nil {
		s.logger.Error("invalid push envelope", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid push envelope")
		return
	}

	job, err := envelope.Job()
	if err != nil {
		s.logger.Error("undecodable job payload",
			zap.String("message_id", envelope.Message.MessageID),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
		return
	}

	s.logger.Info("job received",
		zap.String("message_id", envelope.Message.MessageID),
		zap.String("phone", job.PhoneNumber),
	)
	// Runs to completion; there is no mid-flight abort path once dequeued.
	s.handler.Handle(r.Context(), job)
	writeJSON(w, http.StatusOK, map[string]string{"status": "done"})
}
