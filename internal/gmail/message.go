package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/mail"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// encodeRFC2047 encodes a string for use in email headers according to RFC 2047
// This is necessary for non-ASCII characters (like German umlauts) in subjects
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// buildRaw renders msg as an RFC 2822 message from sender and returns it
// base64url encoded, as messages.send and drafts.create expect. Header
// values come from the model, so line breaks in them are rejected and
// recipients are re-rendered from their parsed form.
func buildRaw(sender string, msg *EmailMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	to, err := addressList("to", msg.To)
	if err != nil {
		return "", err
	}
	cc, err := addressList("cc", msg.Cc)
	if err != nil {
		return "", err
	}
	bcc, err := addressList("bcc", msg.Bcc)
	if err != nil {
		return "", err
	}
	if hasLineBreak(msg.Subject) {
		return "", fmt.Errorf("subject must not contain line breaks")
	}
	if hasLineBreak(sender) {
		return "", fmt.Errorf("sender must not contain line breaks")
	}

	var b strings.Builder
	writeHeader := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	if sender != "" {
		writeHeader("From", sender)
	}
	writeHeader("To", to)
	if cc != "" {
		writeHeader("Cc", cc)
	}
	if bcc != "" {
		writeHeader("Bcc", bcc)
	}
	writeHeader("Subject", encodeRFC2047(msg.Subject))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", `text/plain; charset="UTF-8"`)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}

func hasLineBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// addressList parses recipients and renders them as one header value. Bare
// addresses stay bare; named ones are quoted and encoded by net/mail.
func addressList(field string, recipients []string) (string, error) {
	if len(recipients) == 0 {
		return "", nil
	}
	rendered := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if hasLineBreak(r) {
			return "", fmt.Errorf("%s recipient %q must not contain line breaks", field, r)
		}
		addrs, err := mail.ParseAddressList(r)
		if err != nil {
			return "", fmt.Errorf("invalid %s recipient %q: %w", field, r, err)
		}
		for _, a := range addrs {
			if a.Name == "" {
				rendered = append(rendered, a.Address)
			} else {
				rendered = append(rendered, a.String())
			}
		}
	}
	return strings.Join(rendered, ", "), nil
}

// header returns the first header called name, case-insensitively.
func header(part *gmail.MessagePart, name, fallback string) string {
	if part == nil {
		return fallback
	}
	for _, h := range part.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return fallback
}

// walkParts recursively walks through message parts
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}

	fn(part)

	for _, subpart := range part.Parts {
		walkParts(subpart, fn)
	}
}

// plainTextBody finds the first text/plain part, walking nested multiparts
// depth first.
func plainTextBody(payload *gmail.MessagePart) (string, error) {
	var data string
	walkParts(payload, func(part *gmail.MessagePart) {
		if data == "" && part.MimeType == "text/plain" && part.Filename == "" &&
			part.Body != nil && part.Body.Data != "" {
			data = part.Body.Data
		}
	})

	// Single-part messages sometimes omit the mime type.
	if data == "" && payload != nil && payload.MimeType == "" && len(payload.Parts) == 0 &&
		payload.Body != nil {
		data = payload.Body.Data
	}
	if data == "" {
		return "", nil
	}
	return decodeBody(data)
}

// decodeBody decodes body data, which Gmail sends as base64url with or
// without padding.
func decodeBody(data string) (string, error) {
	for _, enc := range []*base64.Encoding{base64.URLEncoding, base64.RawURLEncoding, base64.StdEncoding} {
		if decoded, err := enc.DecodeString(data); err == nil {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("failed to decode message body")
}

func attachmentNames(payload *gmail.MessagePart) []string {
	var names []string
	walkParts(payload, func(part *gmail.MessagePart) {
		if part.Filename != "" {
			names = append(names, part.Filename)
		}
	})
	return names
}
