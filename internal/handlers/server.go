package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jrennick/gambit/internal/database"
	"github.com/jrennick/gambit/internal/engine"
	"github.com/jrennick/gambit/internal/fanout"
)

// Server bundles the dependencies HTTP and WebSocket handlers need.
type Server struct {
	Engine   *engine.Service
	Registry *fanout.Registry
	Users    *database.Users
	Log      *logrus.Logger

	// TokenExpire is mirrored into auth cookie Max-Age.
	TokenExpire time.Duration
	// PingInterval paces WebSocket heartbeats.
	PingInterval time.Duration
}

func NewServer(eng *engine.Service, reg *fanout.Registry, users *database.Users, log *logrus.Logger) *Server {
	return &Server{
		Engine:       eng,
		Registry:     reg,
		Users:        users,
		Log:          log,
		TokenExpire:  72 * time.Hour,
		PingInterval: 30 * time.Second,
	}
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing left to do but note it.
		logrus.Warnf("failed to encode response: %v", err)
	}
}

// writeEngineError maps an engine error to its HTTP status and a JSON body
// carrying the stable error code.
func writeEngineError(w http.ResponseWriter, err error) {
	code := engine.CodeOf(err)
	status := http.StatusInternalServerError
	msg := "internal error"
	var e *engine.Error
	if errors.As(err, &e) {
		status = e.HTTPStatus()
		msg = e.Message
	}
	writeJSON(w, status, map[string]string{
		"error": msg,
		"code":  string(code),
	})
}
