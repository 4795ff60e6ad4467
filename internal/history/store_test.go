package history_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/colorguess/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	db, err := history.Open(context.Background(), history.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return history.NewStore(db)
}

func TestOpenFileMigratesOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "rounds.db")

	db, err := history.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening must not re-apply migrations
	db, err = history.Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestInsertAndRecent(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	for i := 1; i <= 3; i++ {
		require.NoError(t, st.InsertRound(ctx, history.Round{
			PlayerID: "p1", SessionID: "s1", Round: i, Date: "2025-03-01",
			Difficulty: 6, Target: "rgb(1, 2, 3)", Misses: i - 1, ElapsedMs: int64(i * 1000),
		}))
	}
	require.NoError(t, st.InsertRound(ctx, history.Round{PlayerID: "p2", SessionID: "s2", Round: 1, Date: "2025-03-01", Difficulty: 3, Target: "rgb(0, 0, 0)"}))

	rounds, err := st.RecentRounds(ctx, "p1", 2)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, 3, rounds[0].Round)
	assert.Equal(t, 2, rounds[1].Round)

	sum, err := st.Summary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Rounds)
	assert.Equal(t, 1, sum.Perfect)
	assert.InDelta(t, 1.0, sum.AvgMisses, 1e-9)
	assert.InDelta(t, 2000.0, sum.AvgElapsedMs, 1e-9)

	empty, err := st.Summary(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, history.Summary{}, empty)
}

func TestDailyOncePerDayAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	date := "2025-03-01"

	played, err := st.DailyPlayed(ctx, "p1", date, 6)
	require.NoError(t, err)
	assert.False(t, played)

	rows := []history.Round{
		{PlayerID: "p1", SessionID: "a", Round: 1, Date: date, Difficulty: 6, Target: "t", Misses: 2, ElapsedMs: 900, Daily: true},
		{PlayerID: "p1", SessionID: "a", Round: 2, Date: date, Difficulty: 6, Target: "t", Misses: 0, ElapsedMs: 100, Daily: true}, // ignored
		{PlayerID: "p2", SessionID: "b", Round: 1, Date: date, Difficulty: 6, Target: "t", Misses: 1, ElapsedMs: 5000, Daily: true},
		{PlayerID: "p3", SessionID: "c", Round: 1, Date: date, Difficulty: 6, Target: "t", Misses: 1, ElapsedMs: 3000, Daily: true},
		{PlayerID: "p4", SessionID: "d", Round: 1, Date: date, Difficulty: 3, Target: "t", Misses: 0, ElapsedMs: 10, Daily: true},
	}
	for _, r := range rows {
		require.NoError(t, st.InsertRound(ctx, r))
	}

	played, err = st.DailyPlayed(ctx, "p1", date, 6)
	require.NoError(t, err)
	assert.True(t, played)

	top, err := st.DailyLeaderboard(ctx, date, 6, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "p3", top[0].PlayerID)
	assert.Equal(t, "p2", top[1].PlayerID)
	assert.Equal(t, "p1", top[2].PlayerID)
	assert.Equal(t, 2, top[2].Misses)
}
