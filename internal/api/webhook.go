package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/itamarw/gosurf-bot/internal/bot"
	"github.com/itamarw/gosurf-bot/internal/metrics"
	"github.com/itamarw/gosurf-bot/internal/whatsapp"
)

// WebhookServer handles the Meta webhook: the verification handshake and
// inbound message notifications. It is a thin producer: register the
// sender, enqueue one job, return. A malformed payload is acknowledged
// because asking Meta to retry it cannot help; only registration and
// enqueue failures report retryable errors upstream.
type WebhookServer struct {
	router      chi.Router
	dirs        bot.DirectoryProvider
	pubs        bot.PublisherProvider
	verifyToken string
	logger      *zap.Logger
}

// NewWebhookServer wires routes and middleware.
func NewWebhookServer(
	dirs bot.DirectoryProvider,
	pubs bot.PublisherProvider,
	verifyToken string,
	logger *zap.Logger,
) *WebhookServer {
	metrics.Init()
	s := &WebhookServer{
		dirs:        dirs,
		pubs:        pubs,
		verifyToken: verifyToken,
		logger:      logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))

	r.Get("/healthz", healthz)
	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.Get("/webhook", s.verify)
	r.Post("/webhook", s.receive)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *WebhookServer) Handler() http.Handler {
	return s.router
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// verify answers Meta's subscription handshake by echoing the challenge.
func (s *WebhookServer) verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode != "subscribe" || token != s.verifyToken {
		s.logger.Warn("webhook verification failed", zap.String("mode", mode))
		http.Error(w, "verification failed", http.StatusForbidden)
		return
	}
	s.logger.Info("webhook verified")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge)) //nolint:errcheck
}

func (s *WebhookServer) receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	event, err := whatsapp.DecodeEvent(body)
	if err != nil {
		// Permanently malformed; a retry cannot succeed, so acknowledge.
		s.logger.Warn("unparseable webhook payload", zap.Error(err))
		metrics.ObserveWebhookEvent("malformed")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	if !event.IsText() {
		s.logger.Info("ignoring non-text message",
			zap.String("from", event.FromPhone),
			zap.String("type", event.Type),
		)
		metrics.ObserveWebhookEvent("non_text")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	dir, err := s.dirs.Directory(r.Context())
	if err == nil {
		err = dir.RegisterUser(r.Context(), event.FromPhone)
	}
	if err != nil {
		s.logger.Error("user registration failed",
			zap.String("phone", event.FromPhone),
			zap.Error(err),
		)
		metrics.ObserveWebhookEvent("register_failed")
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	publisher, err := s.pubs.Publisher(r.Context())
	if err == nil {
		err = publisher.Publish(r.Context(), bot.Job{
			PhoneNumber: event.FromPhone,
			MessageText: event.Text,
		})
	}
	metrics.ObservePublish(err)
	if err != nil {
		// The one condition where the upstream transport is asked to retry.
		s.logger.Error("job publish failed",
			zap.String("phone", event.FromPhone),
			zap.Error(err),
		)
		metrics.ObserveWebhookEvent("publish_failed")
		writeError(w, http.StatusInternalServerError, "enqueue failed")
		return
	}

	s.logger.Info("job published", zap.String("phone", event.FromPhone))
	metrics.ObserveWebhookEvent("queued")
	writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
}
