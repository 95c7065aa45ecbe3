package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jrennick/gambit/internal/engine"
	"github.com/jrennick/gambit/internal/models"
	"github.com/jrennick/gambit/internal/store"
)

// gameID parses the {id} route parameter. A zero UUID return means the
// response has already been written.
func gameID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// identity resolves the caller, creating a guest when needed.
func (s *Server) identity(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := s.EnsureIdentity(w, r)
	if err != nil {
		s.Log.Warnf("identity resolution failed: %v", err)
		http.Error(w, "authentication failed", http.StatusForbidden)
		return uuid.Nil, false
	}
	return userID, true
}

type createGameRequest struct {
	GameType    models.GameType `json:"game_type"`
	InitialTime int             `json:"initial_time"`
	Increment   int             `json:"increment"`
	Color       string          `json:"color,omitempty"`
	Private     bool            `json:"private,omitempty"`
}

// CreateGameHandler opens a new game with the caller seated. The caller picks
// white unless color says otherwise; the remaining seat stays open for Join.
func (s *Server) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.identity(w, r)
	if !ok {
		return
	}

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	user, err := s.Users.GetByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	params := engine.CreateParams{
		GameType:    req.GameType,
		InitialTime: req.InitialTime,
		Increment:   req.Increment,
		Private:     req.Private,
	}
	if req.Color == "black" {
		params.BlackID = userID
		params.BlackName = user.Username
	} else {
		params.WhiteID = userID
		params.WhiteName = user.Username
	}

	g, err := s.Engine.CreateGame(r.Context(), params)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// ListGamesHandler returns games matching optional status, game_type, and
// player query parameters.
func (s *Server) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	var f store.GameFilter
	if v := r.URL.Query().Get("status"); v != "" {
		st := models.GameStatus(v)
		f.Status = &st
	}
	if v := r.URL.Query().Get("game_type"); v != "" {
		gt := models.GameType(v)
		f.GameType = &gt
	}
	if v := r.URL.Query().Get("player"); v != "" {
		pid, err := uuid.Parse(v)
		if err != nil {
			http.Error(w, "invalid player id", http.StatusBadRequest)
			return
		}
		f.PlayerID = &pid
	}

	games, err := s.Engine.Games(r.Context(), f)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	g, err := s.Engine.Game(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// ReplayHandler returns the full move list for a game, enough to reconstruct
// every intermediate position.
func (s *Server) ReplayHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	moves, err := s.Engine.Replay(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moves)
}

func (s *Server) JoinHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	userID, ok := s.identity(w, r)
	if !ok {
		return
	}
	user, err := s.Users.GetByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	g, err := s.Engine.Join(r.Context(), id, userID, user.Username)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) MoveHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	userID, ok := s.identity(w, r)
	if !ok {
		return
	}

	var req engine.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	g, err := s.Engine.SubmitMove(r.Context(), id, userID, req)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// negotiation wraps the common shape of resign/draw/takeback/abort endpoints.
func (s *Server) negotiation(
	w http.ResponseWriter, r *http.Request,
	op func(r *http.Request, gameID, userID uuid.UUID) (*models.GameRecord, error),
) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	userID, ok := s.identity(w, r)
	if !ok {
		return
	}
	g, err := op(r, id, userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) ResignHandler(w http.ResponseWriter, r *http.Request) {
	s.negotiation(w, r, func(r *http.Request, gid, uid uuid.UUID) (*models.GameRecord, error) {
		return s.Engine.Resign(r.Context(), gid, uid)
	})
}

func (s *Server) OfferDrawHandler(w http.ResponseWriter, r *http.Request) {
	s.negotiation(w, r, func(r *http.Request, gid, uid uuid.UUID) (*models.GameRecord, error) {
		return s.Engine.OfferDraw(r.Context(), gid, uid)
	})
}

func (s *Server) AcceptDrawHandler(w http.ResponseWriter, r *http.Request) {
	s.negotiation(w, r, func(r *http.Request, gid, uid uuid.UUID) (*models.GameRecord, error) {
		return s.Engine.AcceptDraw(r.Context(), gid, uid)
	})
}

func (s *Server) DeclineDrawHandler(w http.ResponseWriter, r *http.Request) {
	s.negotiation(w, r, func(r *http.Request, gid, uid uuid.UUID) (*models.GameRecord, error) {
		return s.Engine.DeclineDraw(r.Context(), gid, uid)
	})
}

func (s *Server) RequestTakebackHandler(w http.ResponseWriter, r *http.Request) {
	s.negotiation(w, r, func(r *http.Request, gid, uid uuid.UUID) (*models.GameRecord, error) {
		return s.Engine.RequestTakeback(r.Context(), gid, uid)
	})
}

func (s *Server) AcceptTakebackHandler(w http.ResponseWriter, r *http.Request) {
	s.negotiation(w, r, func(r *http.Request, gid, uid uuid.UUID) (*models.GameRecord, error) {
		return s.Engine.AcceptTakeback(r.Context(), gid, uid)
	})
}

func (s *Server) DeclineTakebackHandler(w http.ResponseWriter, r *http.Request) {
	s.negotiation(w, r, func(r *http.Request, gid, uid uuid.UUID) (*models.GameRecord, error) {
		return s.Engine.DeclineTakeback(r.Context(), gid, uid)
	})
}

func (s *Server) AbortHandler(w http.ResponseWriter, r *http.Request) {
	s.negotiation(w, r, func(r *http.Request, gid, uid uuid.UUID) (*models.GameRecord, error) {
		return s.Engine.Abort(r.Context(), gid, uid)
	})
}
