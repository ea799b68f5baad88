// internal/daily/daily.go
//
// Deterministic "word of the day" seeding.
// Every player who starts a daily game on the same UTC date, grade and
// difficulty gets the same word list and the same paths: the game RNG is
// seeded from HMAC-SHA256(salt, "YYYY-MM-DD|grade|difficulty").

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"strconv"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns the two PCG seed words for a date, grade and difficulty.
func Seed(date time.Time, salt string, grade int, difficulty string) (uint64, uint64) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date) + "|" + strconv.Itoa(grade) + "|" + difficulty))
	sum := h.Sum(nil)
	// first 16 bytes of the MAC feed the two PCG state words
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}

// Rand returns a generator seeded for the given day.
func Rand(date time.Time, salt string, grade int, difficulty string) *rand.Rand {
	s1, s2 := Seed(date, salt, grade, difficulty)
	return rand.New(rand.NewPCG(s1, s2))
}

// Index maps the day onto [0, n), e.g. to pick a featured word.
func Index(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	s1, _ := Seed(date, salt, 0, "")
	return int(s1 % uint64(n))
}
