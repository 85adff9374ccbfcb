package breaks

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/omriShneor/serenity/internal/timeutil"
)

// Break is a suggested break. Time is UTC and always in the future at planning time.
type Break struct {
	ID              string
	Time            time.Time
	DurationMinutes int
	Activity        Activity
	Reason          string
	// GapID is the identity of the gap the break was planned for. Not serialized.
	GapID string
}

// End returns the end of the break window.
func (b Break) End() time.Time {
	return b.Time.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

type breakJSON struct {
	ID       string   `json:"id"`
	Time     string   `json:"time"`
	Duration int      `json:"duration"`
	Activity Activity `json:"activity"`
	Reason   string   `json:"reason"`
}

// MarshalJSON renders the output contract: time as a UTC string ending in "Z".
func (b Break) MarshalJSON() ([]byte, error) {
	return json.Marshal(breakJSON{
		ID:       b.ID,
		Time:     timeutil.FormatUTC(b.Time),
		Duration: b.DurationMinutes,
		Activity: b.Activity,
		Reason:   b.Reason,
	})
}

func (b *Break) UnmarshalJSON(data []byte) error {
	var raw breakJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := timeutil.ParseInstant(raw.Time)
	if err != nil {
		return fmt.Errorf("invalid break time: %w", err)
	}
	*b = Break{
		ID:              raw.ID,
		Time:            t,
		DurationMinutes: raw.Duration,
		Activity:        raw.Activity,
		Reason:          raw.Reason,
	}
	return nil
}

// breakID is stable across re-derivations of the same gap.
func breakID(gapID string, start time.Time) string {
	sum := sha256.Sum256([]byte(gapID + "|" + timeutil.FormatUTC(start.Truncate(time.Minute))))
	return "brk_" + hex.EncodeToString(sum[:8])
}

func copyBreaks(in []Break) []Break {
	if in == nil {
		return nil
	}
	out := make([]Break, len(in))
	copy(out, in)
	return out
}
