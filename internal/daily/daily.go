// internal/daily/daily.go
//
// Daily palette seeding. Every player asking for today's daily round gets the
// same sequence of palettes: the generator seed is HMAC-SHA256(salt, date).

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/colorguess/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic generator seed for the day of t and difficulty d.
// Easy and hard dailies use different seeds so their palettes are unrelated.
func Seed(t time.Time, salt string, d game.Difficulty) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	h.Write([]byte{'|', byte(d)})
	sum := h.Sum(nil)
	// first 8 bytes are plenty for a PCG seed
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
