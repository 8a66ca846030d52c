package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// LetterForDate picks the day's required starting letter deterministically
// from the viable letters using HMAC(salt, YYYY-MM-DD) % len(viable).
func LetterForDate(date time.Time, salt string, viable []rune) rune {
	if len(viable) == 0 {
		return 'a'
	}
	dk := DateKey(date)
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(dk))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	n := binary.BigEndian.Uint64(sum[:8])
	return viable[int(n%uint64(len(viable)))]
}
