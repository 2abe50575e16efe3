package profiles

import (
	"testing"
	"time"
)

// tickClock makes every call to now advance by one second.
func tickClock(t *testing.T) {
	t.Helper()
	old := now
	tick := time.Unix(0, 0)
	now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	t.Cleanup(func() { now = old })
}
