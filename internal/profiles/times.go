package profiles

import "time"

// now is the clock used for calculation timings.
var now = time.Now

// Times accumulates wall-clock seconds per calculation name.
type Times map[string]float64

func (t Times) track(key string, start time.Time) {
	t[key] += now().Sub(start).Seconds()
}

func (t Times) clone() Times {
	out := make(Times, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// mergeTimes sums both timing tables key by key.
func mergeTimes(a, b Times) Times {
	out := a.clone()
	for k, v := range b {
		out[k] += v
	}
	return out
}

func (t Times) snapshot() map[string]float64 {
	return map[string]float64(t.clone())
}
