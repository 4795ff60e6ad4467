// internal/game/engine.go
//
// Game controller for a single player session.
// Responsibilities:
//   - Start rounds: fresh palette of `difficulty` swatches and a target drawn from it.
//   - Apply guesses by value equality: hit → score+1 and round_won, miss → swatch disabled.
//   - Difficulty switches (restart the round), score reset, clipboard copy of the target.
//   - Transient feedback messages that revert on a scheduled callback.
//   - Publish a View snapshot to subscribers after every change.
//
// Notes:
//   - All state is owned by Session and guarded by its mutex, so a display
//     surface can call in from any goroutine (HTTP handlers, timer callbacks).
//   - A guess matches on the color value, not the swatch: with duplicate colors
//     in a palette, clicking any copy of the target wins.
//   - Every message change bumps msgGen. A reversion scheduled for an older
//     generation does nothing when it fires, so a stale timer cannot overwrite
//     newer feedback.
package game

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/colorguess/internal/color"
)

// Options configures a Session. Zero values get sensible defaults.
type Options struct {
	Difficulty Difficulty
	Generator  *color.Generator
	Scheduler  Scheduler
	Clock      func() time.Time
	Namer      func(color.Color) string // optional hint for the target
	Daily      bool
	DailyDate  string // YYYY-MM-DD the daily palette belongs to

	CopyRevert       time.Duration
	ScoreResetRevert time.Duration
}

// Session holds the state of one player's game.
type Session struct {
	mu sync.Mutex

	id        string
	owner     string
	daily     bool
	dailyDate string

	gen   *color.Generator
	sched Scheduler
	now   func() time.Time
	namer func(color.Color) string

	copyRevert  time.Duration
	scoreRevert time.Duration

	difficulty Difficulty
	palette    []Swatch
	target     color.Color
	score      int
	phase      Phase
	round      int
	misses     int
	started    time.Time
	touched    time.Time

	msg     Message
	msgGen  uint64
	pending Timer

	subs    map[int]chan View
	nextSub int
	closed  bool
}

// NewSession constructs a session owned by owner and starts its first round.
func NewSession(id, owner string, opt Options) *Session {
	s := &Session{
		id:          id,
		owner:       owner,
		daily:       opt.Daily,
		dailyDate:   opt.DailyDate,
		gen:         opt.Generator,
		sched:       opt.Scheduler,
		now:         opt.Clock,
		namer:       opt.Namer,
		copyRevert:  opt.CopyRevert,
		scoreRevert: opt.ScoreResetRevert,
		difficulty:  opt.Difficulty,
		subs:        make(map[int]chan View),
	}
	if s.gen == nil {
		s.gen = color.NewRandomGenerator()
	}
	if s.sched == nil {
		s.sched = realScheduler{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.copyRevert <= 0 {
		s.copyRevert = copyRevert
	}
	if s.scoreRevert <= 0 {
		s.scoreRevert = scoreResetWait
	}
	if s.difficulty != Easy && s.difficulty != Hard {
		s.difficulty = Hard
	}

	s.mu.Lock()
	s.startRoundLocked()
	s.mu.Unlock()
	return s
}

func (s *Session) ID() string    { return s.id }
func (s *Session) Owner() string { return s.owner }
func (s *Session) Daily() bool   { return s.daily }

// Touched returns the time of the last player action.
func (s *Session) Touched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// View returns a snapshot of the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// StartRound replaces the palette and target. Score is kept.
func (s *Session) StartRound() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startRoundLocked()
	return s.viewLocked()
}

// SetDifficulty switches level and restarts the round unconditionally.
func (s *Session) SetDifficulty(d Difficulty) (View, error) {
	if d != Easy && d != Hard {
		return View{}, ErrInvalidDifficulty
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.difficulty = d
	s.startRoundLocked()
	return s.viewLocked(), nil
}

// ResetScore zeroes the score and leaves the round alone.
func (s *Session) ResetScore() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = s.now()
	s.score = 0
	s.setMessageLocked(Message{Text: MsgScoreReset, Tone: ToneNeutral}, s.scoreRevert)
	s.publishLocked()
	return s.viewLocked()
}

// Guess checks c against the target.
// If c is in the palette, its first enabled swatch is the one marked on a miss;
// if every swatch of that color is already disabled the guess is ignored.
// A color absent from the palette is a plain miss.
func (s *Session) Guess(c color.Color) GuessResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, found := -1, false
	for i, sw := range s.palette {
		if sw.Color != c {
			continue
		}
		found = true
		if !sw.Disabled() {
			idx = i
			break
		}
	}
	if found && idx < 0 {
		return GuessResult{Outcome: OutcomeIgnored, Score: s.score}
	}
	return s.guessLocked(idx, c)
}

// GuessAt guesses the swatch at index i.
func (s *Session) GuessAt(i int) (GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.palette) {
		return GuessResult{Outcome: OutcomeIgnored, Score: s.score}, ErrSwatchOutOfRange
	}
	if s.palette[i].Disabled() {
		return GuessResult{Outcome: OutcomeIgnored, Score: s.score}, nil
	}
	return s.guessLocked(i, s.palette[i].Color), nil
}

// CopyTarget writes the target string to clip. The clipboard call runs
// without the session lock. Game state is never changed, only the message,
// and not even that if a new round started while the clipboard was busy.
func (s *Session) CopyTarget(ctx context.Context, clip Clipboard) error {
	s.mu.Lock()
	text := s.target.String()
	s.touched = s.now()
	round := s.round
	s.mu.Unlock()

	err := ErrClipboardUnsupported
	if clip != nil {
		err = clip.WriteText(ctx, text)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round != round || s.closed {
		return err
	}
	if err != nil {
		s.setMessageLocked(Message{Text: MsgCopyFailed, Tone: ToneNeutral}, 0)
	} else {
		s.setMessageLocked(Message{Text: MsgCopied, Tone: ToneSuccess}, s.copyRevert)
	}
	s.publishLocked()
	return err
}

// Subscribe returns a channel receiving a View after every change, plus a
// cancel func. The channel holds one snapshot; a slow reader sees the latest.
func (s *Session) Subscribe() (<-chan View, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan View, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close stops any pending reversion and closes subscriber channels.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.msgGen++
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// ----------------------------- internals -----------------------------------

func (s *Session) startRoundLocked() {
	colors := s.gen.Generate(s.difficulty.Swatches())
	s.palette = make([]Swatch, len(colors))
	for i, c := range colors {
		s.palette[i] = Swatch{Color: c}
	}
	s.target = s.gen.Pick(colors)
	s.phase = PhaseAwaitingGuess
	s.round++
	s.misses = 0
	s.started = s.now()
	s.touched = s.started
	s.setMessageLocked(Message{Text: MsgPickColor, Tone: ToneNeutral}, 0)
	s.publishLocked()
}

func (s *Session) guessLocked(idx int, c color.Color) GuessResult {
	s.touched = s.now()
	if s.phase == PhaseRoundWon {
		return GuessResult{Outcome: OutcomeIgnored, Score: s.score}
	}

	if c == s.target {
		s.score++
		s.phase = PhaseRoundWon
		for i := range s.palette {
			s.palette[i].Incorrect = false
			s.palette[i].Correct = true
		}
		s.setMessageLocked(Message{Text: MsgCorrect, Tone: ToneSuccess}, 0)
		s.publishLocked()
		return GuessResult{
			Outcome: OutcomeHit,
			Score:   s.score,
			Round: &RoundSummary{
				Round:      s.round,
				Difficulty: s.difficulty,
				Target:     s.target,
				Misses:     s.misses,
				Elapsed:    s.touched.Sub(s.started),
				Daily:      s.daily,
				DailyDate:  s.dailyDate,
			},
		}
	}

	if idx >= 0 {
		s.palette[idx].Incorrect = true
	}
	s.misses++
	s.setMessageLocked(Message{Text: MsgTryAgain, Tone: ToneFail}, 0)
	s.publishLocked()
	return GuessResult{Outcome: OutcomeMiss, Score: s.score, Distance: color.Distance(c, s.target)}
}

// setMessageLocked replaces the message. With revertAfter > 0 it schedules a
// return to "Pick a color" tied to this message's generation.
func (s *Session) setMessageLocked(m Message, revertAfter time.Duration) {
	s.msgGen++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.msg = m
	if revertAfter <= 0 || s.closed {
		return
	}
	gen := s.msgGen
	s.pending = s.sched.AfterFunc(revertAfter, func() { s.revert(gen) })
}

func (s *Session) revert(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.msgGen != gen {
		return
	}
	s.pending = nil
	s.msgGen++
	s.msg = Message{Text: MsgPickColor, Tone: ToneNeutral}
	s.publishLocked()
}

func (s *Session) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	v := s.viewLocked()
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			// drop the stale snapshot, keep the newest
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

func (s *Session) viewLocked() View {
	pal := make([]SwatchView, len(s.palette))
	for i, sw := range s.palette {
		display := sw.Color
		if sw.Correct {
			display = s.target
		}
		pal[i] = SwatchView{
			Index:     i,
			Color:     sw.Color,
			Display:   display,
			Hex:       display.Hex(),
			Disabled:  sw.Disabled(),
			Incorrect: sw.Incorrect,
			Correct:   sw.Correct,
		}
	}
	levels := make([]LevelView, len(Levels))
	for i, d := range Levels {
		levels[i] = LevelView{Name: d.String(), Swatches: d.Swatches(), Active: d == s.difficulty}
	}
	v := View{
		ID:          s.id,
		Palette:     pal,
		Target:      s.target,
		TargetHex:   s.target.Hex(),
		Score:       s.score,
		Difficulty:  s.difficulty,
		SwatchCount: len(s.palette),
		Phase:       s.phase,
		Message:     s.msg,
		Levels:      levels,
		Round:       s.round,
		Daily:       s.daily,
	}
	if s.namer != nil {
		v.Hint = s.namer(s.target)
	}
	return v
}
