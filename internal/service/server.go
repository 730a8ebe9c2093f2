package service

import (
	"net/http"
	"time"

	"loathing_assistant/internal/app"
	"loathing_assistant/internal/pkg/auth"
	"loathing_assistant/internal/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// Service encapsulates the local control server: the application logic, its
// HTTP handlers, the run address and a logger.
type Service struct {
	handlers   *handlers
	app        *app.App
	runAddress string
	log        *logger.Logger
}

// NewService creates and initializes a new Service instance.
func NewService(app *app.App, runAddress string, l *logger.Logger) *Service {
	handlers := newHandlers(app, l)
	return &Service{handlers: handlers, app: app, runAddress: runAddress, log: l}
}

// NewRouter sets up the routes. Logging applies globally; everything but
// authentication requires a token.
func (service *Service) NewRouter() chi.Router {
	router := chi.NewRouter()
	router.Use(service.log.WithLogging())
	router.Post("/api/auth", service.handlers.authHandler)
	router.Route("/", func(r chi.Router) {
		r.Use(auth.CheckJWTMiddleware())
		r.Get("/api/status", service.handlers.statusHandler)
		r.Post("/api/buy", service.handlers.buyHandler)
		r.Post("/api/use", service.handlers.useHandler)
		r.Post("/api/continue", service.handlers.continueHandler)
		r.Post("/api/panels/{name}", service.handlers.panelHandler)
	})
	return router
}

// NewServer returns the HTTP server listening on the run address.
func (service *Service) NewServer() *http.Server {
	const readHeaderTimeout = 5 * time.Second
	return &http.Server{Addr: service.runAddress, Handler: service.NewRouter(), ReadHeaderTimeout: readHeaderTimeout}
}
