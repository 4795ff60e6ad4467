package history

import (
	"context"
	"database/sql"
)

// Round is one won round.
type Round struct {
	PlayerID   string `json:"-"`
	SessionID  string `json:"sessionId"`
	Round      int    `json:"round"`
	Date       string `json:"date"`
	Difficulty int    `json:"difficulty"`
	Target     string `json:"target"`
	Misses     int    `json:"misses"`
	ElapsedMs  int64  `json:"elapsedMs"`
	Daily      bool   `json:"daily"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// Summary aggregates a player's rounds.
type Summary struct {
	Rounds       int     `json:"rounds"`
	Perfect      int     `json:"perfect"` // won without a miss
	AvgMisses    float64 `json:"avgMisses"`
	AvgElapsedMs float64 `json:"avgElapsedMs"`
}

// LBRow is a daily leaderboard entry.
type LBRow struct {
	PlayerID  string `json:"playerId"`
	Misses    int    `json:"misses"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// InsertRound records a won round. A second daily win for the same player,
// date and difficulty is ignored.
func (s *Store) InsertRound(ctx context.Context, r Round) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO rounds
            (player_id, session_id, round, date, difficulty, target, misses, elapsed_ms, daily)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PlayerID, r.SessionID, r.Round, r.Date, r.Difficulty, r.Target, r.Misses, r.ElapsedMs, boolInt(r.Daily),
	)
	return err
}

// RecentRounds returns the player's latest rounds, newest first. Default limit is 20.
func (s *Store) RecentRounds(ctx context.Context, playerID string, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT session_id, round, date, difficulty, target, misses, elapsed_ms, daily, created_at
        FROM rounds
        WHERE player_id=?
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Round, 0, limit)
	for rows.Next() {
		r := Round{PlayerID: playerID}
		var daily int
		if err := rows.Scan(&r.SessionID, &r.Round, &r.Date, &r.Difficulty, &r.Target,
			&r.Misses, &r.ElapsedMs, &daily, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Daily = daily == 1
		out = append(out, r)
	}
	return out, rows.Err()
}

// Summary aggregates every round of the player.
func (s *Store) Summary(ctx context.Context, playerID string) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COALESCE(SUM(CASE WHEN misses = 0 THEN 1 ELSE 0 END), 0),
               COALESCE(AVG(misses), 0),
               COALESCE(AVG(elapsed_ms), 0)
        FROM rounds WHERE player_id=?`, playerID,
	).Scan(&sum.Rounds, &sum.Perfect, &sum.AvgMisses, &sum.AvgElapsedMs)
	return sum, err
}

// DailyPlayed reports whether the player already won the daily for date and difficulty.
func (s *Store) DailyPlayed(ctx context.Context, playerID, date string, difficulty int) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM rounds WHERE daily=1 AND player_id=? AND date=? AND difficulty=?`,
		playerID, date, difficulty,
	).Scan(&cnt)
	return cnt > 0, err
}

// DailyLeaderboard ranks daily wins by misses, then time, then who finished first.
func (s *Store) DailyLeaderboard(ctx context.Context, date string, difficulty, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT player_id, misses, elapsed_ms
        FROM rounds
        WHERE daily=1 AND date=? AND difficulty=?
        ORDER BY misses ASC, elapsed_ms ASC, created_at ASC
        LIMIT ?`, date, difficulty, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Misses, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
