package landing

import (
	"encoding/json"
	"fmt"
	"io"
	"net/mail"
	"net/url"
	"strings"
)

// Practical upper bound for a deliverable address.
const maxEmailLength = 254

// normalizeEmail trims, lower-cases and syntactically validates an email
// address. Validation is deliberately shallow: a local part and a domain
// separated by '@', with a dot somewhere in the domain. Full RFC 5322
// validation is the email provider's problem, not ours.
func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || len(email) > maxEmailLength {
		return "", false
	}

	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return "", false
	}

	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return "", false
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") {
		return "", false
	}

	return email, true
}

// decodeLenientJSON decodes a JSON request body into v. Bodies that arrive
// double-encoded (a JSON string whose content is the object — some form
// libraries serialize this way) are unwrapped once.
func decodeLenientJSON(r io.Reader, v any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}

	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}

	var wrapped string
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if err := json.Unmarshal([]byte(wrapped), v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("invalid JSON body")
}

// isValidOrigin reports whether raw is an absolute http(s) URL usable as a
// redirect base.
func isValidOrigin(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed == nil {
		return false
	}
	if !parsed.IsAbs() || strings.TrimSpace(parsed.Host) == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
