package term

import "github.com/gdamore/tcell/v2"

const (
	headerRows = 5
	footerRows = 2
	columns    = 3
	gapX       = 2
	gapY       = 1
)

// Rect is a screen region in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether cell (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Layout places n swatches in rows of three between the header and footer.
// Swatches keep a roughly square look (terminal cells are about twice as
// tall as wide). A screen too small for any swatch yields no rects.
func Layout(width, height, n int) []Rect {
	if n <= 0 {
		return nil
	}
	cols := min(columns, n)
	rows := (n + cols - 1) / cols

	availW := width - 2 - gapX*(cols-1)
	availH := height - headerRows - footerRows - gapY*(rows-1)
	w := availW / cols
	h := availH / rows
	if w < 1 || h < 1 {
		return nil
	}
	if w > 2*h {
		w = 2 * h
	} else if h > w/2 && w >= 2 {
		h = w / 2
	}

	total := cols*w + gapX*(cols-1)
	left := (width - total) / 2
	out := make([]Rect, n)
	for i := range out {
		col, row := i%cols, i/cols
		out[i] = Rect{
			X: left + col*(w+gapX),
			Y: headerRows + row*(h+gapY),
			W: w,
			H: h,
		}
	}
	return out
}

// HitTest returns the index of the rect containing (x, y), or -1.
func HitTest(rects []Rect, x, y int) int {
	for i, r := range rects {
		if r.Contains(x, y) {
			return i
		}
	}
	return -1
}

// Action is what a key press asks the game to do.
type Action int

const (
	ActNone Action = iota
	ActGuess
	ActReset
	ActEasy
	ActHard
	ActScoreReset
	ActCopy
	ActQuit
)

// KeyAction maps a key event to an action. For ActGuess the second value is
// the zero-based swatch index.
func KeyAction(ev *tcell.EventKey) (Action, int) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActQuit, 0
	case tcell.KeyRune:
	default:
		return ActNone, 0
	}
	r := ev.Rune()
	switch {
	case r >= '1' && r <= '9':
		return ActGuess, int(r - '1')
	case r == 'r' || r == ' ':
		return ActReset, 0
	case r == 'e':
		return ActEasy, 0
	case r == 'h':
		return ActHard, 0
	case r == 's':
		return ActScoreReset, 0
	case r == 'c':
		return ActCopy, 0
	case r == 'q':
		return ActQuit, 0
	}
	return ActNone, 0
}
