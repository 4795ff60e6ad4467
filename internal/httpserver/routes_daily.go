// internal/httpserver/routes_daily.go
//
// HTTP routes for the daily palette.
//   - POST /daily/new         → start today's daily session {difficulty?}
//   - GET  /daily/leaderboard → top 20 daily wins for today (or ?date=) and ?difficulty=
//
// Everyone gets the same palettes for a given day and difficulty (seeded by
// date + salt). Each player has one daily session per day and difficulty:
// asking again returns it as left, misses included. A player's first daily
// win of the day is what counts; later wins are ignored by the history store.

package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/colorguess/internal/color"
	"github.com/robalobadob/colorguess/internal/daily"
	"github.com/robalobadob/colorguess/internal/game"
	"github.com/robalobadob/colorguess/internal/history"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Get("/leaderboard", s.handleDailyLeaderboard)
	})
}

// dailyNewRes is returned by /daily/new. View is absent when Played is true.
type dailyNewRes struct {
	Date   string     `json:"date"`
	Played bool       `json:"played"`
	View   *game.View `json:"view,omitempty"`
}

// dailySessionID is the stable session ID for a player's daily round.
// It is keyed with the server secret so it cannot be guessed from outside.
func (s *Server) dailySessionID(uid, date string, d game.Difficulty) string {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte("daily|" + uid + "|" + date + "|" + d.String()))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil)[:16])
}

// handleDailyNew returns the caller's daily session, creating it on first use.
// If the player already has a daily win for today → Played=true, no session.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	d := s.deps.DefaultDifficulty
	if req.Difficulty != "" {
		var err error
		if d, err = game.ParseDifficulty(req.Difficulty); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_difficulty")
			return
		}
	}

	now := s.now()
	date := daily.DateKey(now)
	uid := playerID(r)

	if s.deps.History != nil {
		played, err := s.deps.History.DailyPlayed(r.Context(), uid, date, d.Swatches())
		if err != nil {
			log.Warn().Err(err).Msg("daily played check")
		} else if played {
			_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: true})
			return
		}
	}

	id := s.dailySessionID(uid, date, d)
	s.dailyMu.Lock()
	defer s.dailyMu.Unlock()
	if sess, err := s.deps.Store.Get(r.Context(), id); err == nil && sess.Owner() == uid {
		v := sess.View()
		_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: false, View: &v})
		return
	}

	gen := color.NewGenerator(daily.Seed(now, s.deps.DailySalt, d))
	sess := s.newSession(id, uid, d, gen, date)
	if err := s.deps.Store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save daily session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	v := sess.View()
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(dailyNewRes{Date: date, Played: false, View: &v})
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date       string          `json:"date"`
	Difficulty game.Difficulty `json:"difficulty"`
	Top        []history.LBRow `json:"top"`
}

// handleDailyLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	}
	d := s.deps.DefaultDifficulty
	if q := r.URL.Query().Get("difficulty"); q != "" {
		var err error
		if d, err = game.ParseDifficulty(q); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_difficulty")
			return
		}
	}
	out := lbRes{Date: date, Difficulty: d, Top: []history.LBRow{}}
	if s.deps.History != nil {
		rows, err := s.deps.History.DailyLeaderboard(r.Context(), date, d.Swatches(), 20)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		out.Top = rows
	}
	_ = json.NewEncoder(w).Encode(out)
}
