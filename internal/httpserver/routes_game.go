// internal/httpserver/routes_game.go
//
// Game routes. Every route below /game/{id} acts on a session owned by the
// calling player; other players' sessions answer 404 as if they did not exist.
//
//   - POST /game/new              → start a session {difficulty?}
//   - GET  /game/{id}             → current View
//   - POST /game/{id}/guess       → {index} or {color}
//   - POST /game/{id}/reset       → new round (reset / play again)
//   - POST /game/{id}/difficulty  → {level}; restarts the round
//   - POST /game/{id}/score/reset → score back to zero
//   - POST /game/{id}/copy        → copy target {clientResult?: "ok"|"failed"}
//   - GET  /game/{id}/history     → player's recent rounds + summary

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/colorguess/internal/clipboard"
	"github.com/robalobadob/colorguess/internal/color"
	"github.com/robalobadob/colorguess/internal/daily"
	"github.com/robalobadob/colorguess/internal/game"
	"github.com/robalobadob/colorguess/internal/history"
	"github.com/robalobadob/colorguess/internal/store"
)

// mountGame registers the /game routes.
func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Get("/game/{id}", s.withSession(s.handleGetGame))
	r.Post("/game/{id}/guess", s.withSession(s.handleGuess))
	r.Post("/game/{id}/reset", s.withSession(s.handleReset))
	r.Post("/game/{id}/difficulty", s.withSession(s.handleDifficulty))
	r.Post("/game/{id}/score/reset", s.withSession(s.handleScoreReset))
	r.Post("/game/{id}/copy", s.withSession(s.handleCopy))
	r.Get("/game/{id}/history", s.withSession(s.handleHistory))
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *game.Session)

// withSession resolves {id} to a session owned by the caller.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.lookupSession(w, r)
		if !ok {
			return
		}
		h(w, r, sess)
	}
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	sess, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil || sess.Owner() != playerID(r) {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Msg("load session")
		}
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	return sess, true
}

// decodeOptional decodes a JSON body; an empty body is not an error.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// newSession builds a session with the server's collaborators.
// A non-empty dailyDate marks it as that day's daily session.
func (s *Server) newSession(id, owner string, d game.Difficulty, gen *color.Generator, dailyDate string) *game.Session {
	return game.NewSession(id, owner, game.Options{
		Difficulty: d,
		Generator:  gen,
		Scheduler:  s.deps.Scheduler,
		Clock:      s.deps.Clock,
		Namer:      s.deps.Namer,
		Daily:      dailyDate != "",
		DailyDate:  dailyDate,
	})
}

// ------------------------------ new / get ----------------------------------

type newGameReq struct {
	Difficulty string `json:"difficulty"` // "easy" | "hard" | "3" | "6"; default from config
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
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

	sess := s.newSession(genID(), playerID(r), d, nil, "")
	if err := s.deps.Store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	log.Info().Str("session", sess.ID()).Str("difficulty", d.String()).Msg("session started")

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(sess.View())
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	_ = json.NewEncoder(w).Encode(sess.View())
}

// -------------------------------- guess ------------------------------------

// guessReq selects a swatch by index, or names a color by value.
type guessReq struct {
	Index *int   `json:"index"`
	Color string `json:"color"`
}

type guessRes struct {
	Result game.GuessResult `json:"result"`
	View   game.View        `json:"view"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	var res game.GuessResult
	switch {
	case req.Index != nil:
		var err error
		if res, err = sess.GuessAt(*req.Index); err != nil {
			writeError(w, http.StatusBadRequest, "out_of_range")
			return
		}
	case req.Color != "":
		c, err := color.Parse(req.Color)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_color")
			return
		}
		res = sess.Guess(c)
	default:
		writeError(w, http.StatusBadRequest, "missing_guess")
		return
	}

	if res.Round != nil {
		s.recordRound(r, sess, res.Round)
	}
	_ = json.NewEncoder(w).Encode(guessRes{Result: res, View: sess.View()})
}

// recordRound persists a won round (best effort, non-fatal if it fails).
func (s *Server) recordRound(r *http.Request, sess *game.Session, sum *game.RoundSummary) {
	if s.deps.History == nil {
		return
	}
	// daily wins count for the day the palette was dealt
	date := sum.DailyDate
	if date == "" {
		date = daily.DateKey(s.now())
	}
	err := s.deps.History.InsertRound(r.Context(), history.Round{
		PlayerID:   sess.Owner(),
		SessionID:  sess.ID(),
		Round:      sum.Round,
		Date:       date,
		Difficulty: sum.Difficulty.Swatches(),
		Target:     sum.Target.String(),
		Misses:     sum.Misses,
		ElapsedMs:  sum.Elapsed.Milliseconds(),
		Daily:      sum.Daily,
	})
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID()).Msg("record round")
	}
}

// ------------------------- reset / difficulty / score ----------------------

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	_ = json.NewEncoder(w).Encode(sess.StartRound())
}

type difficultyReq struct {
	Level string `json:"level"`
}

func (s *Server) handleDifficulty(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	if sess.Daily() {
		// the daily palette sequence is tied to the level it was dealt for
		writeError(w, http.StatusBadRequest, "daily_fixed_difficulty")
		return
	}
	var req difficultyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	d, err := game.ParseDifficulty(req.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_difficulty")
		return
	}
	v, err := sess.SetDifficulty(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_difficulty")
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleScoreReset(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	_ = json.NewEncoder(w).Encode(sess.ResetScore())
}

// --------------------------------- copy ------------------------------------

// copyReq lets a browser report the outcome of its own navigator.clipboard call.
// Without it the server's configured clipboard is used.
type copyReq struct {
	ClientResult string `json:"clientResult"`
}

type copyRes struct {
	Copied bool      `json:"copied"`
	Text   string    `json:"text"`
	View   game.View `json:"view"`
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	var req copyReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	clip := s.deps.Clipboard
	if req.ClientResult != "" {
		clip = clipboard.Reported{OK: req.ClientResult == "ok"}
	}
	err := sess.CopyTarget(r.Context(), clip)
	if err != nil {
		log.Debug().Err(err).Str("session", sess.ID()).Msg("copy failed")
	}
	v := sess.View()
	_ = json.NewEncoder(w).Encode(copyRes{Copied: err == nil, Text: v.Target.String(), View: v})
}

// -------------------------------- history ----------------------------------

type historyRes struct {
	Rounds  []history.Round `json:"rounds"`
	Summary history.Summary `json:"summary"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, sess *game.Session) {
	out := historyRes{Rounds: []history.Round{}}
	if s.deps.History != nil {
		rounds, err := s.deps.History.RecentRounds(r.Context(), sess.Owner(), 20)
		if err != nil {
			log.Error().Err(err).Msg("recent rounds")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		sum, err := s.deps.History.Summary(r.Context(), sess.Owner())
		if err != nil {
			log.Error().Err(err).Msg("round summary")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		out = historyRes{Rounds: rounds, Summary: sum}
	}
	_ = json.NewEncoder(w).Encode(out)
}
