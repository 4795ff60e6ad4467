// internal/clipboard/clipboard.go
//
// Clipboard adapters satisfying game.Clipboard.
//
//   - System:   the host clipboard via atotto/clipboard (xclip/xsel/wl-copy, pbcopy, win32).
//   - Memory:   keeps the last copied text; headless runs and tests.
//   - Reported: the browser already tried navigator.clipboard and told us how it went.
//   - None:     always unsupported.
//
// Every failure is reported as game.ErrClipboardUnsupported (wrapped where a
// cause exists) so callers only need one errors.Is check.

package clipboard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sysclip "github.com/atotto/clipboard"

	"github.com/robalobadob/colorguess/internal/game"
)

// Mode names accepted by New.
const (
	ModeSystem = "system"
	ModeMemory = "memory"
	ModeNone   = "none"
)

// New returns the adapter for mode ("system", "memory" or "none").
// Unknown modes fall back to None.
func New(mode string) game.Clipboard {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeSystem:
		return System{}
	case ModeMemory:
		return &Memory{}
	}
	return None{}
}

// System writes to the host clipboard.
type System struct{}

func (System) WriteText(ctx context.Context, text string) error {
	if sysclip.Unsupported {
		return game.ErrClipboardUnsupported
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", game.ErrClipboardUnsupported, err)
	}
	if err := sysclip.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", game.ErrClipboardUnsupported, err)
	}
	return nil
}

// Memory records the most recent text.
type Memory struct {
	mu   sync.Mutex
	last string
}

func (m *Memory) WriteText(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = text
	return nil
}

// Last returns the most recently written text.
func (m *Memory) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Reported replays an outcome the client already observed.
type Reported struct {
	OK bool
}

func (r Reported) WriteText(context.Context, string) error {
	if r.OK {
		return nil
	}
	return game.ErrClipboardUnsupported
}

// None never copies.
type None struct{}

func (None) WriteText(context.Context, string) error { return game.ErrClipboardUnsupported }
