package calming

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/omriShneor/serenity/internal/breaks"
	"github.com/omriShneor/serenity/internal/jsonrepair"
	"github.com/omriShneor/serenity/internal/llm"
)

const maxNoteChars = 600

// Verdict is the model's answer for one meeting.
type Verdict struct {
	NeedsCalmingBreak bool   `json:"needs_calming_break"`
	Reason            string `json:"reason"`
}

// Decider asks a text model whether a meeting calls for a calming break.
type Decider struct {
	client llm.Client
	log    zerolog.Logger
}

// NewDecider returns breaks.NeverOverride when client is nil so the engine skips the call entirely.
func NewDecider(client llm.Client, logger zerolog.Logger) breaks.OverrideDecider {
	if client == nil {
		return breaks.NeverOverride
	}
	return &Decider{
		client: client,
		log:    logger.With().Str("component", "calming").Logger(),
	}
}

func (d *Decider) Decide(ctx context.Context, event breaks.Event, notes []breaks.Note) (bool, error) {
	text, err := d.client.Complete(ctx, SystemPrompt, BuildPrompt(event, notes))
	if err != nil {
		return false, fmt.Errorf("calming decision: %w", err)
	}

	var v Verdict
	if err := jsonrepair.DecodeObject(text, &v); err != nil {
		return false, fmt.Errorf("calming decision: %w", err)
	}

	d.log.Debug().
		Str("event_id", event.ID).
		Bool("needs_calming_break", v.NeedsCalmingBreak).
		Str("reason", v.Reason).
		Msg("calming verdict")
	return v.NeedsCalmingBreak, nil
}

// BuildPrompt renders the meeting and its notes for the model.
func BuildPrompt(event breaks.Event, notes []breaks.Note) string {
	var b strings.Builder

	b.WriteString("## Meeting\n\n")
	title := event.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "When: %s - %s UTC (%d minutes)\n",
		event.Start.UTC().Format("2006-01-02 15:04"),
		event.End.UTC().Format("15:04"),
		int(event.End.Sub(event.Start).Minutes()),
	)

	b.WriteString("\n## Related Notes\n\n")
	if len(notes) == 0 {
		b.WriteString("No related notes.\n")
	}
	for _, n := range notes {
		fmt.Fprintf(&b, "### %s", n.Title)
		if !n.EditedAt.IsZero() {
			fmt.Fprintf(&b, " (last edited %s)", n.EditedAt.UTC().Format("2006-01-02 15:04"))
		}
		b.WriteString("\n")
		if content := truncate(strings.TrimSpace(n.Content), maxNoteChars); content != "" {
			b.WriteString(content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nDoes this meeting call for a calming break afterwards? Respond with the JSON object.")
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
