package snippet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/forPelevin/recap/internal/types"
)

// Pad widens a requested highlight window by the fade duration on both sides
// so the fades cover material outside the highlight. When the start would go
// below zero the missing pre-roll is added to the end instead, keeping the
// extracted duration at (end-start)+2*fade.
func Pad(w types.Window, fade time.Duration) (types.Window, error) {
	if fade < 0 {
		fade = 0
	}
	out := types.Window{Start: w.Start - fade, End: w.End + fade}
	if out.Start < 0 {
		out.End += -out.Start
		out.Start = 0
	}
	if out.End <= out.Start {
		return types.Window{}, fmt.Errorf("%w: window %s-%s pads to %s-%s",
			types.ErrInvalidSnippet, FormatHMS(w.Start), FormatHMS(w.End), FormatHMS(out.Start), FormatHMS(out.End))
	}
	return out, nil
}

// FormatHMS renders d as HH:MM:SS.mmm for ffmpeg seek arguments.
func FormatHMS(d time.Duration) string {
	neg := d < 0
	if neg {
		d = -d
	}
	d = d.Round(time.Millisecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	out := fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
	if neg {
		return "-" + out
	}
	return out
}

// ParseTimestamp accepts "SS", "M:SS" or "H:MM:SS", each with optional
// fractional seconds.
func ParseTimestamp(s string) (time.Duration, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("timestamp %q: too many fields", raw)
	}

	sec, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || sec < 0 || math.IsInf(sec, 0) || math.IsNaN(sec) {
		return 0, fmt.Errorf("timestamp %q: invalid seconds", raw)
	}
	if len(parts) > 1 && sec >= 60 {
		return 0, fmt.Errorf("timestamp %q: seconds must be below 60", raw)
	}
	total := sec

	mult := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("timestamp %q: invalid field %q", raw, parts[i])
		}
		if i == 1 && n >= 60 {
			return 0, fmt.Errorf("timestamp %q: minutes must be below 60", raw)
		}
		total += float64(n) * mult
		mult *= 60
	}
	return time.Duration(math.Round(total * 1000)) * time.Millisecond, nil
}

// Seconds converts a float number of seconds to a millisecond-rounded duration.
func Seconds(sec float64) time.Duration {
	return time.Duration(math.Round(sec*1000)) * time.Millisecond
}
