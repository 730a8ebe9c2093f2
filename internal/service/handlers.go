// Package service contains the HTTP handlers of the local control surface.
// It parses requests, calls the app package, maps its errors onto status codes
// and writes JSON responses.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"loathing_assistant/internal/app"
	"loathing_assistant/internal/models"
	"loathing_assistant/internal/pkg/auth"
	"loathing_assistant/internal/pkg/logger"
	"loathing_assistant/internal/requestthread"
	"loathing_assistant/internal/storage"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

const requestTimeout = 60 * time.Second

// handlers aggregates dependencies needed by HTTP handlers.
type handlers struct {
	app *app.App
	log *logger.Logger
}

func newHandlers(app *app.App, l *logger.Logger) *handlers {
	return &handlers{app: app, log: l}
}

// authHandler authenticates an operator and returns a token.
func (handlers *handlers) authHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	var authRequest models.AuthRequest
	var authResponse models.AuthResponse

	if err := readJSON(req, &authRequest); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	authResponse.Token, err = handlers.app.ProcessAuth(ctx, authRequest)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			writeErrorResponse(res, "user with provided name already exists", http.StatusUnauthorized)
		case errors.Is(err, app.ErrMissingUsernameOrPassword):
			writeErrorResponse(res, "missing username or password", http.StatusBadRequest)
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			writeErrorResponse(res, "incorrect password", http.StatusUnauthorized)
		case errors.Is(err, storage.ErrUnavailable):
			writeErrorResponse(res, "storage unavailable", http.StatusServiceUnavailable)
		default:
			writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(res, authResponse)
}

// statusHandler reports the display line and the character.
func (handlers *handlers) statusHandler(res http.ResponseWriter, req *http.Request) {
	if !authorized(res, req) {
		return
	}
	writeJSON(res, handlers.app.ProcessStatus(req.Context()))
}

// buyHandler buys an item from the offers in the body.
func (handlers *handlers) buyHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	if !authorized(res, req) {
		return
	}

	var buyRequest models.BuyRequest
	if err := readJSON(req, &buyRequest); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := handlers.app.ProcessBuy(ctx, buyRequest)
	if err != nil {
		handlers.writeCommandError(res, err)
		return
	}
	writeJSON(res, resp)
}

// useHandler uses an item.
func (handlers *handlers) useHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	if !authorized(res, req) {
		return
	}

	var useRequest models.UseRequest
	if err := readJSON(req, &useRequest); err != nil {
		writeErrorResponse(res, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := handlers.app.ProcessUse(ctx, useRequest)
	if err != nil {
		handlers.writeCommandError(res, err)
		return
	}
	writeJSON(res, resp)
}

// continueHandler clears a halted state.
func (handlers *handlers) continueHandler(res http.ResponseWriter, req *http.Request) {
	if !authorized(res, req) {
		return
	}
	writeJSON(res, handlers.app.ProcessContinue(req.Context()))
}

// panelHandler prepares and opens the panel named in the URL.
func (handlers *handlers) panelHandler(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	if !authorized(res, req) {
		return
	}
	writeJSON(res, handlers.app.ProcessPanel(ctx, chi.URLParam(req, "name")))
}

func (handlers *handlers) writeCommandError(res http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrMissingItemOrQuantity):
		writeErrorResponse(res, "missing item or quantity", http.StatusBadRequest)
	case errors.Is(err, app.ErrNoOffers):
		writeErrorResponse(res, "no offers provided", http.StatusBadRequest)
	case errors.Is(err, requestthread.ErrSequenceHalted):
		writeErrorResponse(res, "request sequence halted", http.StatusConflict)
	case errors.Is(err, requestthread.ErrStopped):
		writeErrorResponse(res, "request thread stopped", http.StatusServiceUnavailable)
	default:
		handlers.log.Sugar().Errorf("Command failed: %s", err)
		writeErrorResponse(res, err.Error(), http.StatusBadGateway)
	}
}

// authorized reports whether the middleware stored an operator ID, writing
// 401 when it did not.
func authorized(res http.ResponseWriter, req *http.Request) bool {
	userID, ok := req.Context().Value(auth.ContextUserID).(int32)
	if !ok || userID == 0 {
		writeErrorResponse(res, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func readJSON(req *http.Request, v any) error {
	requestBody, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(requestBody, v)
}

func writeJSON(res http.ResponseWriter, v any) {
	result, err := json.Marshal(v)
	if err != nil {
		writeErrorResponse(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusOK)
	res.Write(result)
}

func writeErrorResponse(res http.ResponseWriter, errorInfo string, statusCode int) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	json.NewEncoder(res).Encode(models.ErrorResponse{Errors: errorInfo})
}
