package format_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/gmail-postgres-mcp/internal/format"
)

func TestEncodeRaw(t *testing.T) {
	cases := []struct {
		name     string
		msg      format.Message
		expected string
	}{
		{
			name: "plain_text",
			msg: format.Message{
				To:      "rcpt@example.com",
				Subject: "Weekly report",
				Body:    "All systems nominal.",
			},
			expected: "To: rcpt@example.com\r\n" +
				"Subject: Weekly report\r\n" +
				"MIME-Version: 1.0\r\n" +
				"Content-Type: text/plain; charset=utf-8\r\n" +
				"\r\n" +
				"All systems nominal.",
		},
		{
			name: "cc_and_bcc",
			msg: format.Message{
				To:      "rcpt@example.com",
				Cc:      "cc@example.com",
				Bcc:     "bcc@example.com",
				Subject: "Hello",
				Body:    "Hi there",
			},
			expected: "To: rcpt@example.com\r\n" +
				"Cc: cc@example.com\r\n" +
				"Bcc: bcc@example.com\r\n" +
				"Subject: Hello\r\n" +
				"MIME-Version: 1.0\r\n" +
				"Content-Type: text/plain; charset=utf-8\r\n" +
				"\r\n" +
				"Hi there",
		},
		{
			name: "html_body_takes_precedence",
			msg: format.Message{
				To:       "rcpt@example.com",
				Subject:  "Styled",
				Body:     "fallback text",
				HTMLBody: "<b>bold</b>",
			},
			expected: "To: rcpt@example.com\r\n" +
				"Subject: Styled\r\n" +
				"MIME-Version: 1.0\r\n" +
				"Content-Type: text/html; charset=utf-8\r\n" +
				"\r\n" +
				"<b>bold</b>",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := tc.msg.EncodeRaw()

			decoded, err := base64.RawURLEncoding.DecodeString(raw)
			require.NoError(t, err, "raw message must be base64url without padding")
			assert.Equal(t, tc.expected, string(decoded))
		})
	}
}

func TestEncodeRawIsURLSafe(t *testing.T) {
	msg := format.Message{
		To:      "rcpt@example.com",
		Subject: strings.Repeat("~", 100),
		Body:    strings.Repeat("\xff\xfe", 50),
	}

	raw := msg.EncodeRaw()

	assert.NotContains(t, raw, "+")
	assert.NotContains(t, raw, "/")
	assert.NotContains(t, raw, "=")
}
