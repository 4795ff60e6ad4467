// Package term is the terminal display surface: a tcell screen showing the
// target string, the palette as true-color blocks and the status line.
//
// All drawing happens on the Run goroutine. Screen events and session views
// (including timed message reversions) are merged in one select loop.
package term

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/colorguess/internal/game"
)

// Options wires an App to its collaborators. Only Session is required.
type Options struct {
	Session   *game.Session
	Clipboard game.Clipboard
	Chimes    *Chimes
	OnRound   func(game.RoundSummary) // called after every won round
}

// App renders one session on a tcell screen.
type App struct {
	screen  tcell.Screen
	sess    *game.Session
	clip    game.Clipboard
	chimes  *Chimes
	onRound func(game.RoundSummary)

	view  game.View
	rects []Rect
}

// New binds an initialised screen to a session.
func New(screen tcell.Screen, opt Options) *App {
	return &App{
		screen:  screen,
		sess:    opt.Session,
		clip:    opt.Clipboard,
		chimes:  opt.Chimes,
		onRound: opt.OnRound,
		view:    opt.Session.View(),
	}
}

// Run draws and handles input until the player quits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	views, cancel := a.sess.Subscribe()
	defer cancel()

	a.screen.EnableMouse()
	defer a.screen.DisableMouse()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 16)
	go pump(a.screen.PollEvent, events, done)

	a.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v, ok := <-views:
			if !ok {
				return nil
			}
			a.view = v
			a.draw()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if a.handle(ctx, ev) {
				return nil
			}
			a.draw()
		}
	}
}

// pump forwards polled events until poll returns nil or done is closed.
func pump(poll func() tcell.Event, events chan<- tcell.Event, done <-chan struct{}) {
	defer close(events)
	for {
		ev := poll()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// handle applies one screen event and reports whether to quit.
func (a *App) handle(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return false
		}
		x, y := ev.Position()
		if i := HitTest(a.rects, x, y); i >= 0 {
			a.guess(i)
		}
	case *tcell.EventKey:
		act, idx := KeyAction(ev)
		switch act {
		case ActQuit:
			return true
		case ActGuess:
			a.guess(idx)
		case ActReset:
			a.view = a.sess.StartRound()
		case ActEasy:
			a.view, _ = a.sess.SetDifficulty(game.Easy)
		case ActHard:
			a.view, _ = a.sess.SetDifficulty(game.Hard)
		case ActScoreReset:
			a.view = a.sess.ResetScore()
		case ActCopy:
			if err := a.sess.CopyTarget(ctx, a.clip); err != nil {
				log.Debug().Err(err).Msg("copy failed")
			}
			a.view = a.sess.View()
		}
	}
	return false
}

func (a *App) guess(i int) {
	res, err := a.sess.GuessAt(i)
	if err != nil {
		return
	}
	switch res.Outcome {
	case game.OutcomeHit:
		a.chimes.Hit()
		if a.onRound != nil && res.Round != nil {
			a.onRound(*res.Round)
		}
	case game.OutcomeMiss:
		a.chimes.Miss()
	}
	a.view = a.sess.View()
}

// ------------------------------- drawing -----------------------------------

var (
	styleText    = tcell.StyleDefault
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSuccess = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleFail    = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

func (a *App) draw() {
	s := a.screen
	s.Clear()
	w, h := s.Size()
	v := a.view

	title := tcell.StyleDefault.Foreground(tcell.ColorSteelBlue).Bold(true)
	if v.Phase == game.PhaseRoundWon {
		title = tcell.StyleDefault.Foreground(rgb(v.Target.R, v.Target.G, v.Target.B)).Bold(true)
	}
	center(s, w, 0, "GUESS THE COLOR", title)
	center(s, w, 1, strings.ToUpper(v.Target.String()), styleText.Bold(true))
	if v.Hint != "" {
		center(s, w, 2, "near "+v.Hint, styleDim.Italic(true))
	}
	status := fmt.Sprintf("Score: %d   Swatches: %d   Level: %s", v.Score, v.SwatchCount, v.Difficulty)
	center(s, w, 3, status, styleText)

	msgStyle := styleText
	switch v.Message.Tone {
	case game.ToneSuccess:
		msgStyle = styleSuccess
	case game.ToneFail:
		msgStyle = styleFail
	}
	center(s, w, 4, v.Message.Text, msgStyle)

	a.rects = Layout(w, h, len(v.Palette))
	for i, r := range a.rects {
		sw := v.Palette[i]
		if sw.Incorrect {
			continue
		}
		fill(s, r, tcell.StyleDefault.Background(rgb(sw.Display.R, sw.Display.G, sw.Display.B)))
		label := fmt.Sprintf("%d", i+1)
		put(s, r.X+r.W/2, r.Y+r.H/2, label, labelStyle(sw))
	}

	help := "1-6 guess  r new colors  e easy  h hard  s reset score  c copy  q quit"
	if v.Phase == game.PhaseRoundWon {
		help = "r play again  e easy  h hard  s reset score  c copy  q quit"
	}
	center(s, w, h-1, help, styleDim)
	s.Show()
}

func labelStyle(sw game.SwatchView) tcell.Style {
	bg := rgb(sw.Display.R, sw.Display.G, sw.Display.B)
	fg := tcell.ColorWhite
	// perceived brightness
	if int(sw.Display.R)*299+int(sw.Display.G)*587+int(sw.Display.B)*114 > 128000 {
		fg = tcell.ColorBlack
	}
	return tcell.StyleDefault.Background(bg).Foreground(fg)
}

func rgb(r, g, b uint8) tcell.Color {
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func fill(s tcell.Screen, r Rect, st tcell.Style) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			s.SetContent(x, y, ' ', nil, st)
		}
	}
}

func put(s tcell.Screen, x, y int, text string, st tcell.Style) {
	for _, ch := range text {
		s.SetContent(x, y, ch, nil, st)
		x++
	}
}

func center(s tcell.Screen, width, y int, text string, st tcell.Style) {
	x := (width - len([]rune(text))) / 2
	if x < 0 {
		x = 0
	}
	put(s, x, y, text, st)
}
