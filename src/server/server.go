// Package server exposes the companion core to a UI process: REST for
// stats/rating, websocket for streamed analysis.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"chesscoach/src/analysis"
	"chesscoach/src/coach"
	"chesscoach/src/levels"
	"chesscoach/src/logx"
	"chesscoach/src/rating"
	"chesscoach/src/store"
)

type Handler struct {
	coach    *coach.Coach
	store    store.Store
	log      logx.Logger
	depth    int
	upgrader websocket.Upgrader
}

func NewHandler(c *coach.Coach, st store.Store, depth int, log logx.Logger) *Handler {
	return &Handler{
		coach: c,
		store: st,
		log:   log,
		depth: depth,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/api/levels", h.handleLevels)
	r.Get("/api/stats/{player}", h.handleStats)
	r.Post("/api/result/{player}", h.handleResult)
	r.Get("/api/games/{player}", h.handleGames)
	r.Get("/ws/analyze", h.handleAnalyze)
	return r
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("write response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

type levelInfo struct {
	Level       int    `json:"level"`
	Description string `json:"description"`
	DisplayName string `json:"displayName"`
}

func (h *Handler) handleLevels(w http.ResponseWriter, r *http.Request) {
	out := make([]levelInfo, 0, len(levels.Table))
	for _, p := range levels.Table {
		out = append(out, levelInfo{p.Level, p.Description, p.DisplayName})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	s, err := h.store.Stats(r.Context(), player)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats": s,
		"level": levels.LevelForRating(s.Rating),
	})
}

type resultRequest struct {
	Outcome rating.Outcome `json:"outcome"`
	Game    *struct {
		Level    int      `json:"level"`
		Moves    []string `json:"moves"`
		FinalFEN string   `json:"finalFen"`
	} `json:"game,omitempty"`
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "bad request body")
		return
	}
	switch req.Outcome {
	case rating.Win, rating.Loss, rating.Draw:
	default:
		h.writeError(w, http.StatusBadRequest, "outcome must be win, loss or draw")
		return
	}

	s, err := h.store.Stats(r.Context(), player)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s = rating.ApplyOutcome(s, req.Outcome)
	if err := h.store.SaveStats(r.Context(), player, s); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Game != nil {
		_, err := h.store.SaveGame(r.Context(), player, store.GameRecord{
			Level:    req.Game.Level,
			Result:   req.Outcome,
			Moves:    req.Game.Moves,
			FinalFEN: req.Game.FinalFEN,
		})
		if err != nil {
			h.log.Errorf("save game for %s: %v", player, err)
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats": s,
		"level": levels.LevelForRating(s.Rating),
	})
}

func (h *Handler) handleGames(w http.ResponseWriter, r *http.Request) {
	player := chi.URLParam(r, "player")
	games, err := h.store.Games(r.Context(), player)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, games)
}

type wsMessage struct {
	Type   string           `json:"type"` // update | result | error
	Update *analysis.Update `json:"update,omitempty"`
	Result *analysis.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	fen := r.URL.Query().Get("fen")
	if fen == "" {
		h.writeError(w, http.StatusBadRequest, "missing fen parameter")
		return
	}
	depth := h.depth
	if v := r.URL.Query().Get("depth"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			depth = d
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	res, err := h.coach.AnalyzePosition(r.Context(), fen, depth, func(u analysis.Update) {
		if werr := conn.WriteJSON(wsMessage{Type: "update", Update: &u}); werr != nil {
			h.log.Debugf("drop ws update: %v", werr)
		}
	})
	if err != nil {
		_ = conn.WriteJSON(wsMessage{Type: "error", Error: err.Error()})
		return
	}
	_ = conn.WriteJSON(wsMessage{Type: "result", Result: res})
}
