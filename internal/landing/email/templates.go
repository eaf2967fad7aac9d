package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Welcome to Solarly</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 0; background-color: #f5f5f5;">
<table role="presentation" style="width: 100%; border: 0; cellpadding: 0; cellspacing: 0;">
<tr><td style="padding: 40px 0; text-align: center;">
<table role="presentation" style="max-width: 480px; margin: 0 auto; background: #ffffff; border-radius: 8px; overflow: hidden; box-shadow: 0 1px 3px rgba(0,0,0,0.1);">
<tr><td style="padding: 32px 40px; text-align: left;">
<h1 style="margin: 0 0 16px; font-size: 24px; color: #1a1a1a;">Hi {{.Name}}, welcome to Solarly</h1>
<p style="margin: 0 0 16px; color: #666; font-size: 15px; line-height: 1.5;">
Thanks for signing up. You're on the list for the Solarly advisor journal &mdash; we'll keep you posted as we roll out.
</p>
<p style="margin: 24px 0 0; color: #999; font-size: 13px; line-height: 1.5;">
Didn't sign up, or changed your mind? Just reply to this email and we'll remove you.
</p>
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>`))

var alertTemplate = template.Must(template.New("alert").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>New Solarly signup</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;">
<h2 style="margin: 0 0 12px;">New Solarly signup</h2>
<p style="margin: 0 0 4px;"><strong>Email:</strong> {{.Email}}</p>
<p style="margin: 0;"><strong>Source:</strong> {{.Segment}}</p>
</body>
</html>`))

// WelcomeData holds template data for the welcome email.
type WelcomeData struct {
	Name string
}

// AlertData holds template data for the operator alert email.
type AlertData struct {
	Email   string
	Segment string
}

// RenderWelcomeEmail renders the welcome HTML and text bodies for a new lead.
func RenderWelcomeEmail(data WelcomeData) (html, text string, err error) {
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render welcome template: %w", err)
	}

	textBody := fmt.Sprintf("Hi %s, welcome to Solarly\n\nThanks for signing up. You're on the list for the Solarly advisor journal.\n\nDidn't sign up, or changed your mind? Just reply to this email and we'll remove you.", data.Name)

	return buf.String(), textBody, nil
}

// RenderAlertEmail renders the internal operator alert bodies.
func RenderAlertEmail(data AlertData) (html, text string, err error) {
	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render alert template: %w", err)
	}

	textBody := fmt.Sprintf("New Solarly signup\n\nEmail: %s\nSource: %s", data.Email, data.Segment)

	return buf.String(), textBody, nil
}

// FriendlyName derives a greeting name from the local part of an email
// address: the text before the first '.', '_' or '-' separator with
// non-alphanumeric characters stripped. Falls back to "there" so the
// greeting still reads naturally.
func FriendlyName(email string) string {
	local := email
	if at := strings.IndexByte(local, '@'); at >= 0 {
		local = local[:at]
	}
	if sep := strings.IndexAny(local, "._-"); sep >= 0 {
		local = local[:sep]
	}

	var b strings.Builder
	for _, r := range local {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "there"
	}
	return b.String()
}
