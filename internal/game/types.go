// internal/game/types.go
//
// Core type definitions for the color guessing game.
// Defines:
//   - Difficulty: palette size (Easy=3, Hard=6).
//   - Phase: round state (awaiting_guess → round_won).
//   - Message/Tone: the feedback line shown to the player.
//   - Swatch, View: per-swatch state and the snapshot handed to display surfaces.
//   - Outcome, GuessResult, RoundSummary: what a guess did.
//   - Scheduler, Clipboard: the two collaborators a Session calls out to.

package game

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/colorguess/internal/color"
)

var (
	ErrInvalidDifficulty    = errors.New("invalid difficulty")
	ErrSwatchOutOfRange     = errors.New("swatch index out of range")
	ErrClipboardUnsupported = errors.New("clipboard not supported")
)

// Difficulty selects the palette size. The value is the swatch count.
type Difficulty int

const (
	Easy Difficulty = 3
	Hard Difficulty = 6
)

// Levels lists the selectable difficulties in display order.
var Levels = []Difficulty{Easy, Hard}

// Swatches returns the palette size for d.
func (d Difficulty) Swatches() int { return int(d) }

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Hard:
		return "hard"
	}
	return "difficulty(" + strconv.Itoa(int(d)) + ")"
}

// ParseDifficulty accepts "easy", "hard", "3" or "6" (case-insensitive).
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "3":
		return Easy, nil
	case "hard", "6":
		return Hard, nil
	}
	return 0, ErrInvalidDifficulty
}

func (d Difficulty) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Phase is the round state.
type Phase string

const (
	PhaseAwaitingGuess Phase = "awaiting_guess"
	PhaseRoundWon      Phase = "round_won"
)

// Tone colors the feedback message.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneSuccess Tone = "success"
	ToneFail    Tone = "fail"
)

// Feedback texts.
const (
	MsgPickColor   = "Pick a color"
	MsgCorrect     = "Correct! 🎉"
	MsgTryAgain    = "Try again"
	MsgCopied      = "Copied RGB to clipboard"
	MsgCopyFailed  = "Copy not supported"
	MsgScoreReset  = "Score reset"
	copyRevert     = 1400 * time.Millisecond
	scoreResetWait = 1200 * time.Millisecond
)

// Message is the feedback line.
type Message struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone"`
}

// Swatch is one palette entry. It is disabled once marked either way.
type Swatch struct {
	Color     color.Color
	Incorrect bool
	Correct   bool
}

// Disabled reports whether the swatch can no longer be guessed.
func (s Swatch) Disabled() bool { return s.Incorrect || s.Correct }

// Outcome of a single guess.
type Outcome string

const (
	OutcomeIgnored Outcome = "ignored" // round already won or swatch disabled
	OutcomeMiss    Outcome = "miss"
	OutcomeHit     Outcome = "hit"
)

// RoundSummary describes a won round.
type RoundSummary struct {
	Round      int           `json:"round"`
	Difficulty Difficulty    `json:"difficulty"`
	Target     color.Color   `json:"target"`
	Misses     int           `json:"misses"`
	Elapsed    time.Duration `json:"elapsedNs"`
	Daily      bool          `json:"daily"`
	DailyDate  string        `json:"dailyDate,omitempty"` // day the daily palette was seeded for
}

// GuessResult reports what a guess did.
type GuessResult struct {
	Outcome  Outcome       `json:"outcome"`
	Score    int           `json:"score"`
	Distance float64       `json:"distance,omitempty"` // Lab distance to target on a miss
	Round    *RoundSummary `json:"round,omitempty"`    // set on a hit
}

// SwatchView is the display form of a Swatch.
// Display is what to paint: the target once the round is won.
type SwatchView struct {
	Index     int         `json:"index"`
	Color     color.Color `json:"color"`
	Display   color.Color `json:"display"`
	Hex       string      `json:"hex"`
	Disabled  bool        `json:"disabled"`
	Incorrect bool        `json:"incorrect"`
	Correct   bool        `json:"correct"`
}

// LevelView is one difficulty toggle; exactly one is Active.
type LevelView struct {
	Name     string `json:"name"`
	Swatches int    `json:"swatches"`
	Active   bool   `json:"active"`
}

// View is an immutable snapshot of a session for display surfaces.
type View struct {
	ID          string       `json:"id"`
	Palette     []SwatchView `json:"palette"`
	Target      color.Color  `json:"target"`
	TargetHex   string       `json:"targetHex"`
	Hint        string       `json:"hint,omitempty"`
	Score       int          `json:"score"`
	Difficulty  Difficulty   `json:"difficulty"`
	SwatchCount int          `json:"swatchCount"`
	Phase       Phase        `json:"phase"`
	Message     Message      `json:"message"`
	Levels      []LevelView  `json:"levels"`
	Round       int          `json:"round"`
	Daily       bool         `json:"daily"`
}

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. time.AfterFunc satisfies it via realScheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Clipboard is an external text-copy facility.
// Implementations return ErrClipboardUnsupported (or any error) on failure.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}
