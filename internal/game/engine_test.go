package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/colorguess/internal/color"
)

// manualScheduler collects callbacks and runs them only when told to.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	m.timers = append(m.timers, t)
	return t
}

// fireAll runs every timer, including stopped ones, to mimic a timer that
// already fired on another goroutine before Stop was called.
func (m *manualScheduler) fireAll() {
	m.mu.Lock()
	ts := m.timers
	m.timers = nil
	m.mu.Unlock()
	for _, t := range ts {
		t.f()
	}
}

type fakeClipboard struct {
	text   string
	err    error
	during func() // runs inside WriteText, with the session unlocked
}

func (f *fakeClipboard) WriteText(_ context.Context, text string) error {
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func newTestSession(t *testing.T, d Difficulty) (*Session, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	s := NewSession("s1", "p1", Options{
		Difficulty: d,
		Generator:  color.NewGenerator(99),
		Scheduler:  sched,
	})
	return s, sched
}

// forcePalette installs a known palette and target for scenario tests.
func forcePalette(s *Session, target color.Color, colors ...color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.palette = make([]Swatch, len(colors))
	for i, c := range colors {
		s.palette[i] = Swatch{Color: c}
	}
	s.target = target
}

var (
	c1 = color.Color{R: 10, G: 20, B: 30}
	c2 = color.Color{R: 200, G: 100, B: 0}
	c3 = color.Color{R: 0, G: 255, B: 128}
)

func TestStartRoundTargetInPalette(t *testing.T) {
	for _, d := range Levels {
		s, _ := newTestSession(t, d)
		for i := 0; i < 100; i++ {
			v := s.StartRound()
			require.Len(t, v.Palette, d.Swatches())
			assert.Equal(t, d.Swatches(), v.SwatchCount)
			assert.Equal(t, PhaseAwaitingGuess, v.Phase)
			assert.Equal(t, Message{Text: MsgPickColor, Tone: ToneNeutral}, v.Message)

			var found bool
			for _, sw := range v.Palette {
				if sw.Color == v.Target {
					found = true
				}
			}
			assert.True(t, found, "target %s not in palette", v.Target)
		}
	}
}

func TestGuessTargetScoresOnce(t *testing.T) {
	s, _ := newTestSession(t, Hard)
	target := s.View().Target

	res := s.Guess(target)
	assert.Equal(t, OutcomeHit, res.Outcome)
	assert.Equal(t, 1, res.Score)
	require.NotNil(t, res.Round)
	assert.Equal(t, target, res.Round.Target)
	assert.Equal(t, PhaseRoundWon, s.View().Phase)

	// replayed matching clicks after the win
	for i := 0; i < 3; i++ {
		again := s.Guess(target)
		assert.Equal(t, OutcomeIgnored, again.Outcome)
		assert.Equal(t, 1, again.Score)
	}
	for i := range s.View().Palette {
		r, err := s.GuessAt(i)
		require.NoError(t, err)
		assert.Equal(t, OutcomeIgnored, r.Outcome)
	}
	assert.Equal(t, 1, s.View().Score)
}

func TestGuessNonTarget(t *testing.T) {
	s, _ := newTestSession(t, Easy)
	forcePalette(s, c2, c1, c2, c3)

	res := s.Guess(c1)
	assert.Equal(t, OutcomeMiss, res.Outcome)
	assert.Equal(t, 0, res.Score)
	assert.Greater(t, res.Distance, 0.0)

	v := s.View()
	assert.Equal(t, PhaseAwaitingGuess, v.Phase)
	assert.True(t, v.Palette[0].Disabled)
	assert.True(t, v.Palette[0].Incorrect)
	assert.False(t, v.Palette[2].Disabled)

	// the same disabled color again is ignored
	assert.Equal(t, OutcomeIgnored, s.Guess(c1).Outcome)

	// a color not on the board is still a miss but disables nothing
	res = s.Guess(color.Color{R: 1, G: 1, B: 1})
	assert.Equal(t, OutcomeMiss, res.Outcome)
	v = s.View()
	assert.False(t, v.Palette[1].Disabled)
	assert.False(t, v.Palette[2].Disabled)
}

func TestScenarioA(t *testing.T) {
	s, _ := newTestSession(t, Easy)
	forcePalette(s, c2, c1, c2, c3)

	res, err := s.GuessAt(0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMiss, res.Outcome)
	v := s.View()
	assert.Equal(t, 0, v.Score)
	assert.Equal(t, ToneFail, v.Message.Tone)
	assert.Equal(t, MsgTryAgain, v.Message.Text)
	assert.True(t, v.Palette[0].Disabled)

	res, err = s.GuessAt(1)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHit, res.Outcome)
	assert.Equal(t, 1, res.Round.Misses)
	v = s.View()
	assert.Equal(t, 1, v.Score)
	assert.Equal(t, ToneSuccess, v.Message.Tone)
	assert.Equal(t, MsgCorrect, v.Message.Text)
	for _, sw := range v.Palette {
		assert.True(t, sw.Disabled)
		assert.True(t, sw.Correct)
		assert.False(t, sw.Incorrect)
		assert.Equal(t, c2, sw.Display)
	}
}

func TestScenarioBDifficultySwitchMidRound(t *testing.T) {
	s, _ := newTestSession(t, Hard)
	target := s.View().Target
	s.Guess(target)
	s.StartRound()
	require.Equal(t, 1, s.View().Score)

	// miss once in the new round, then switch
	v := s.View()
	for _, sw := range v.Palette {
		if sw.Color != v.Target {
			_, _ = s.GuessAt(sw.Index)
			break
		}
	}

	v, err := s.SetDifficulty(Easy)
	require.NoError(t, err)
	assert.Len(t, v.Palette, 3)
	assert.Equal(t, 1, v.Score)
	assert.Equal(t, PhaseAwaitingGuess, v.Phase)
	assert.Equal(t, Easy, v.Difficulty)
	for _, sw := range v.Palette {
		assert.False(t, sw.Disabled)
	}

	active := 0
	for _, l := range v.Levels {
		if l.Active {
			active++
			assert.Equal(t, "easy", l.Name)
		}
	}
	assert.Equal(t, 1, active)

	_, err = s.SetDifficulty(Difficulty(4))
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
}

func TestScenarioCClipboardFailure(t *testing.T) {
	s, _ := newTestSession(t, Easy)
	forcePalette(s, c3, c1, c2, c3)

	err := s.CopyTarget(context.Background(), &fakeClipboard{err: errors.New("denied")})
	require.Error(t, err)
	v := s.View()
	assert.Equal(t, MsgCopyFailed, v.Message.Text)
	assert.Equal(t, PhaseAwaitingGuess, v.Phase)

	assert.ErrorIs(t, s.CopyTarget(context.Background(), nil), ErrClipboardUnsupported)

	res := s.Guess(c3)
	assert.Equal(t, OutcomeHit, res.Outcome)
	assert.Equal(t, 1, res.Score)
}

func TestCopySuccessRevertsAfterDelay(t *testing.T) {
	s, sched := newTestSession(t, Easy)
	forcePalette(s, c3, c1, c2, c3)

	clip := &fakeClipboard{}
	require.NoError(t, s.CopyTarget(context.Background(), clip))
	assert.Equal(t, "rgb(0, 255, 128)", clip.text)
	assert.Equal(t, Message{Text: MsgCopied, Tone: ToneSuccess}, s.View().Message)

	require.Len(t, sched.timers, 1)
	assert.Equal(t, 1400*time.Millisecond, sched.timers[0].d)
	sched.fireAll()
	assert.Equal(t, Message{Text: MsgPickColor, Tone: ToneNeutral}, s.View().Message)
}

func TestStaleRevertDoesNotOverwrite(t *testing.T) {
	s, sched := newTestSession(t, Easy)
	forcePalette(s, c3, c1, c2, c3)

	require.NoError(t, s.CopyTarget(context.Background(), &fakeClipboard{}))
	s.Guess(c1) // newer message before the timer fires
	sched.fireAll()

	assert.Equal(t, Message{Text: MsgTryAgain, Tone: ToneFail}, s.View().Message)
}

func TestCopyResultDroppedAfterNewRound(t *testing.T) {
	s, sched := newTestSession(t, Easy)
	forcePalette(s, c3, c1, c2, c3)

	clip := &fakeClipboard{during: func() { s.StartRound() }}
	require.NoError(t, s.CopyTarget(context.Background(), clip))
	assert.Equal(t, "rgb(0, 255, 128)", clip.text)

	v := s.View()
	assert.Equal(t, 2, v.Round)
	assert.Equal(t, Message{Text: MsgPickColor, Tone: ToneNeutral}, v.Message)
	assert.Empty(t, sched.timers)

	// the same holds for a failed copy
	clip = &fakeClipboard{err: errors.New("denied"), during: func() { s.SetDifficulty(Hard) }}
	require.Error(t, s.CopyTarget(context.Background(), clip))
	assert.Equal(t, Message{Text: MsgPickColor, Tone: ToneNeutral}, s.View().Message)
}

func TestDailySummaryCarriesSeedDate(t *testing.T) {
	s := NewSession("d1", "p1", Options{
		Difficulty: Easy,
		Generator:  color.NewGenerator(3),
		Scheduler:  &manualScheduler{},
		Daily:      true,
		DailyDate:  "2024-05-01",
	})
	res := s.Guess(s.View().Target)
	require.NotNil(t, res.Round)
	assert.True(t, res.Round.Daily)
	assert.Equal(t, "2024-05-01", res.Round.DailyDate)
}

func TestResetScore(t *testing.T) {
	s, sched := newTestSession(t, Hard)
	s.Guess(s.View().Target)
	s.StartRound()
	s.Guess(s.View().Target)
	s.StartRound()
	before := s.View()
	require.Equal(t, 2, before.Score)

	v := s.ResetScore()
	assert.Equal(t, 0, v.Score)
	assert.Equal(t, before.Palette, v.Palette)
	assert.Equal(t, before.Target, v.Target)
	assert.Equal(t, before.Phase, v.Phase)
	assert.Equal(t, MsgScoreReset, v.Message.Text)

	require.Len(t, sched.timers, 1)
	assert.Equal(t, 1200*time.Millisecond, sched.timers[0].d)
	sched.fireAll()
	assert.Equal(t, MsgPickColor, s.View().Message.Text)
}

func TestDuplicateOfTargetWins(t *testing.T) {
	s, _ := newTestSession(t, Easy)
	forcePalette(s, c2, c2, c1, c2)

	// index 2 holds the same value as the target
	res, err := s.GuessAt(2)
	require.NoError(t, err)
	assert.Equal(t, OutcomeHit, res.Outcome)
}

func TestGuessAtOutOfRange(t *testing.T) {
	s, _ := newTestSession(t, Easy)
	_, err := s.GuessAt(3)
	assert.ErrorIs(t, err, ErrSwatchOutOfRange)
	_, err = s.GuessAt(-1)
	assert.ErrorIs(t, err, ErrSwatchOutOfRange)
}

func TestSubscribeReceivesLatest(t *testing.T) {
	s, sched := newTestSession(t, Easy)
	forcePalette(s, c2, c1, c2, c3)
	ch, cancel := s.Subscribe()

	s.Guess(c1)
	s.ResetScore()
	v := <-ch
	assert.Equal(t, MsgScoreReset, v.Message.Text)

	sched.fireAll()
	v = <-ch
	assert.Equal(t, MsgPickColor, v.Message.Text)

	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	cancel()
}

func TestCloseStopsEverything(t *testing.T) {
	s, sched := newTestSession(t, Easy)
	ch, _ := s.Subscribe()
	s.ResetScore()
	<-ch
	s.Close()
	_, ok := <-ch
	assert.False(t, ok)

	sched.fireAll()
	assert.Equal(t, MsgScoreReset, s.View().Message.Text)

	late, _ := s.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"easy": Easy, "EASY": Easy, "3": Easy, "hard": Hard, " 6 ": Hard} {
		d, err := ParseDifficulty(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d)
	}
	_, err := ParseDifficulty("medium")
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
}

func TestNamerFillsHint(t *testing.T) {
	s := NewSession("s", "p", Options{
		Difficulty: Easy,
		Generator:  color.NewGenerator(1),
		Scheduler:  &manualScheduler{},
		Namer:      func(color.Color) string { return "teal" },
	})
	assert.Equal(t, "teal", s.View().Hint)
}
