// Package format assembles and decodes Gmail wire payloads.
package format

import (
	"encoding/base64"
	"strings"
)

// Message describes an outgoing email before encoding.
type Message struct {
	To       string
	Cc       string
	Bcc      string
	Subject  string
	Body     string
	HTMLBody string
}

// EncodeRaw assembles the RFC 2822 message and encodes it the way the
// Gmail send API expects: headers joined by CRLF, a blank line, then the
// content, base64url without padding. Cc and Bcc lines are omitted when
// empty. HTMLBody takes precedence over Body and switches the content
// type to text/html.
func (m Message) EncodeRaw() string {
	content := m.Body
	contentType := "text/plain; charset=utf-8"
	if m.HTMLBody != "" {
		content = m.HTMLBody
		contentType = "text/html; charset=utf-8"
	}

	headers := []string{"To: " + m.To}
	if m.Cc != "" {
		headers = append(headers, "Cc: "+m.Cc)
	}
	if m.Bcc != "" {
		headers = append(headers, "Bcc: "+m.Bcc)
	}
	headers = append(headers,
		"Subject: "+m.Subject,
		"MIME-Version: 1.0",
		"Content-Type: "+contentType,
	)

	raw := strings.Join(headers, "\r\n") + "\r\n\r\n" + content

	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}
