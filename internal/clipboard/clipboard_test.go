package clipboard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/robalobadob/colorguess/internal/clipboard"
	"github.com/robalobadob/colorguess/internal/game"
)

func TestNewModes(t *testing.T) {
	assert.IsType(t, clipboard.System{}, clipboard.New("system"))
	assert.IsType(t, &clipboard.Memory{}, clipboard.New(" Memory "))
	assert.IsType(t, clipboard.None{}, clipboard.New("none"))
	assert.IsType(t, clipboard.None{}, clipboard.New("bogus"))
}

func TestMemory(t *testing.T) {
	m := &clipboard.Memory{}
	assert.NoError(t, m.WriteText(context.Background(), "rgb(1, 2, 3)"))
	assert.Equal(t, "rgb(1, 2, 3)", m.Last())
}

func TestReportedAndNone(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, clipboard.Reported{OK: true}.WriteText(ctx, "x"))
	assert.ErrorIs(t, clipboard.Reported{}.WriteText(ctx, "x"), game.ErrClipboardUnsupported)
	assert.ErrorIs(t, clipboard.None{}.WriteText(ctx, "x"), game.ErrClipboardUnsupported)
}

func TestSystemCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, clipboard.System{}.WriteText(ctx, "x"), game.ErrClipboardUnsupported)
}
