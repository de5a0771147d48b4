package services

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// timestampLayout matches the ISO-8601 form written by browsers
// (millisecond precision, UTC).
const timestampLayout = "2006-01-02T15:04:05.000Z"

func isoTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// newID returns a random UUID, or "<unix-millis>-<random>" when the system
// random source fails.
func newID(now time.Time) string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	s := strconv.FormatUint(rand.Uint64(), 36)
	if len(s) > 7 {
		s = s[:7]
	}
	return s
}
