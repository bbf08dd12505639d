package format

import (
	"encoding/base64"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// bodySeparator joins sibling part bodies in ExtractBody.
const bodySeparator = "\n---\n"

// ExtractBody returns the decoded text content of a message payload.
// A part carrying its own body data wins over its sub-parts; otherwise
// the decoded sub-part bodies are joined with a separator line.
func ExtractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		return DecodeBase64URL(payload.Body.Data)
	}

	collected := make([]string, 0, len(payload.Parts))
	for _, part := range payload.Parts {
		if text := ExtractBody(part); text != "" {
			collected = append(collected, text)
		}
	}

	return strings.Join(collected, bodySeparator)
}

// DecodeBase64URL decodes Gmail body data, which arrives base64url
// encoded with or without padding. Undecodable input is returned as is.
func DecodeBase64URL(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return data
		}
	}
	return string(decoded)
}

// HeaderMap flattens message headers into a map keyed by lowercased
// header name. Later duplicates overwrite earlier ones.
func HeaderMap(headers []*gmail.MessagePartHeader) map[string]string {
	if len(headers) == 0 {
		return nil
	}

	m := make(map[string]string, len(headers))
	for _, h := range headers {
		if h == nil || h.Name == "" {
			continue
		}
		m[strings.ToLower(h.Name)] = h.Value
	}

	return m
}
