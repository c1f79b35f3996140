package mail

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"google.golang.org/api/gmail/v1"
)

// BodyMaxChars caps the extracted body; anything longer is cut with a
// trailing marker.
const BodyMaxChars = 500

const truncationMarker = "\n\n[... truncated, open the mailbox for the full message]"

// ExtractBody pulls the plain-text body out of a message payload. It
// prefers a text/plain part, descending multipart structures recursively
// until one is found. Returns "" if the message has no plain-text part.
func ExtractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}

	if payload.MimeType == "text/plain" && payload.Body != nil && payload.Body.Data != "" {
		return decodeBase64URL(payload.Body.Data)
	}

	if strings.HasPrefix(payload.MimeType, "multipart/") {
		for _, part := range payload.Parts {
			if body := ExtractBody(part); body != "" {
				return body
			}
		}
	}

	return ""
}

// decodeBase64URL decodes base64url data, restoring the padding the
// provider omits. Undecodable data yields "".
func decodeBase64URL(data string) string {
	if missing := len(data) % 4; missing != 0 {
		data += strings.Repeat("=", 4-missing)
	}
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// Truncate trims text and caps it at BodyMaxChars with a marker. The cut
// backs off to a rune boundary so a multi-byte character is never split.
func Truncate(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= BodyMaxChars {
		return text
	}
	cut := BodyMaxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return strings.TrimRight(text[:cut], " \t\n") + truncationMarker
}

// header does a case-insensitive lookup in the message headers.
func header(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
