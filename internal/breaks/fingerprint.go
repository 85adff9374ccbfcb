package breaks

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// MaxFingerprintEvents bounds how many events contribute to a fingerprint.
// The soonest events are kept.
const MaxFingerprintEvents = 20

const emptyFingerprint = "no_events"

// Fingerprint digests the (key, start, end) tuples of events. Events are put in
// canonical order before capping, so any permutation of the same set yields the same value.
func Fingerprint(events []Event) string {
	if len(events) == 0 {
		return emptyFingerprint
	}

	ordered := make([]Event, len(events))
	copy(ordered, events)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if ak, bk := a.Key(), b.Key(); ak != bk {
			return ak < bk
		}
		return a.End.Before(b.End)
	})
	if len(ordered) > MaxFingerprintEvents {
		ordered = ordered[:MaxFingerprintEvents]
	}

	tuples := make([]string, 0, len(ordered))
	for _, e := range ordered {
		tuples = append(tuples, e.Key()+":"+stamp(e.Start)+":"+stamp(e.End))
	}

	sum := md5.Sum([]byte(strings.Join(tuples, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
