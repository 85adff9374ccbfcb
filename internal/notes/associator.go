package notes

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/omriShneor/serenity/internal/breaks"
)

const (
	DefaultWindow   = 24 * time.Hour
	DefaultMaxNotes = 5
	minWordLength   = 4
)

var stopWords = map[string]bool{
	"with": true, "from": true, "about": true, "meeting": true, "call": true,
	"sync": true, "notes": true, "weekly": true, "daily": true, "this": true,
	"that": true, "team": true,
}

// Associator links notes to an event by edit-time proximity or shared title words.
type Associator struct {
	Window   time.Duration
	MaxNotes int
}

// NewAssociator returns an Associator with the default window and limit.
func NewAssociator() *Associator {
	return &Associator{Window: DefaultWindow, MaxNotes: DefaultMaxNotes}
}

// NotesFor returns the notes related to event, most recently edited first.
func (a *Associator) NotesFor(event breaks.Event, all []breaks.Note) []breaks.Note {
	window, limit := a.Window, a.MaxNotes
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultMaxNotes
	}

	words := titleWords(event.Title)
	var related []breaks.Note
	for _, n := range all {
		if near(n.EditedAt, event.Start, window) || sharesWord(words, n.Title) {
			related = append(related, n)
		}
	}

	sort.SliceStable(related, func(i, j int) bool {
		return related[i].EditedAt.After(related[j].EditedAt)
	})
	if len(related) > limit {
		related = related[:limit]
	}
	return related
}

func near(edited, start time.Time, window time.Duration) bool {
	if edited.IsZero() {
		return false
	}
	d := edited.Sub(start)
	if d < 0 {
		d = -d
	}
	return d <= window
}

func sharesWord(words map[string]bool, title string) bool {
	if len(words) == 0 {
		return false
	}
	for w := range titleWords(title) {
		if words[w] {
			return true
		}
	}
	return false
}

func titleWords(title string) map[string]bool {
	words := make(map[string]bool)
	for _, f := range strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(f)) < minWordLength || stopWords[f] {
			continue
		}
		words[f] = true
	}
	return words
}
