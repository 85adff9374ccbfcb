package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/dustin/go-humanize"
	"github.com/resend/resend-go/v2"

	"github.com/omriShneor/serenity/internal/breaks"
)

// ResendNotifier sends reminder emails via the Resend API
type ResendNotifier struct {
	client      *resend.Client
	fromAddress string
	appURL      string
}

// NewResendNotifier returns nil when no API key is configured.
func NewResendNotifier(apiKey, from, appURL string) *ResendNotifier {
	if apiKey == "" {
		return nil
	}
	return &ResendNotifier{
		client:      resend.NewClient(apiKey),
		fromAddress: from,
		appURL:      appURL,
	}
}

func (r *ResendNotifier) IsConfigured() bool {
	return r != nil && r.client != nil && r.fromAddress != ""
}

func (r *ResendNotifier) Send(ctx context.Context, reminder Reminder, recipient string) error {
	if recipient == "" {
		return fmt.Errorf("no recipient specified")
	}

	params := &resend.SendEmailRequest{
		From:    r.fromAddress,
		To:      []string{recipient},
		Subject: subjectFor(reminder),
		Html:    r.formatEmailHTML(reminder),
	}

	if _, err := r.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}

func (r *ResendNotifier) Name() string {
	return "resend"
}

func subjectFor(reminder Reminder) string {
	bt := breaks.LookupBreakType(reminder.Break.Activity)
	return fmt.Sprintf("%s %s break %s", bt.Icon, bt.Name, startsIn(reminder))
}

// startsIn renders the break start relative to the reminder time, e.g. "5 minutes from now".
func startsIn(reminder Reminder) string {
	return humanize.RelTime(reminder.Break.Time, reminder.Now, "ago", "from now")
}

func (r *ResendNotifier) formatEmailHTML(reminder Reminder) string {
	b := reminder.Break
	bt := breaks.LookupBreakType(b.Activity)

	linkHTML := ""
	if r.appURL != "" {
		linkHTML = fmt.Sprintf(`<a href="%s/breaks" style="display: inline-block; background: #5b8def; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 16px; font-weight: 500;">Open Serenity</a>`,
			html.EscapeString(r.appURL))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
  <div style="background-color: white; border-radius: 8px; padding: 24px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
    <h2 style="margin: 0 0 16px 0; color: #333;">%s %s</h2>

    <div style="background: #f8f9fa; padding: 16px; border-radius: 8px; margin: 16px 0; border-left: 4px solid %s;">
      <p style="margin: 8px 0;"><strong>Starts:</strong> %s (%s UTC)</p>
      <p style="margin: 8px 0;"><strong>Length:</strong> %d minutes</p>
    </div>

    <p style="margin: 16px 0;">%s</p>
    <p style="margin: 16px 0; color: #666; font-style: italic;">%s</p>

    %s

    <hr style="margin-top: 32px; border: none; border-top: 1px solid #eee;">
    <p style="color: #999; font-size: 12px; margin-top: 16px;">Serenity - Mindful Breaks</p>
  </div>
</body>
</html>`,
		bt.Icon,
		html.EscapeString(bt.Name),
		bt.Color,
		startsIn(reminder),
		b.Time.UTC().Format("15:04"),
		b.DurationMinutes,
		html.EscapeString(bt.Description),
		html.EscapeString(b.Reason),
		linkHTML,
	)
}
