package autofill

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/formfill/fill"
	"github.com/hazyhaar/formfill/profile"
	"github.com/hazyhaar/formfill/shield"
)

// NewRouter exposes the agent over a local HTTP control endpoint:
//
//	POST /autofill  — run a Command (empty body fills with the active profile)
//	GET  /healthz   — liveness
func NewRouter(a *Agent) http.Handler {
	r := chi.NewRouter()
	r.Use(shield.TraceID)
	r.Use(shield.SecurityHeaders(shield.DefaultHeaders()))
	r.Use(shield.MaxBody(1 << 20))
	r.Use(shield.HeadToGet)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/autofill", func(w http.ResponseWriter, req *http.Request) {
		var cmd Command
		body, err := io.ReadAll(req.Body)
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &cmd); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}

		rep, err := a.HandleCommand(req.Context(), cmd)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	})

	return r
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, profile.ErrLocked), errors.Is(err, profile.ErrBadPassphrase):
		return http.StatusForbidden
	case errors.Is(err, profile.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fill.ErrAllFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
