package protocol

import (
	"bytes"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/sagarc03/wirehttp"
)

// Serialize renders res as HTTP/1.1 wire bytes.
//
// Headers are written sorted by key. Content-Length is derived from the body
// and only written when the body is non-empty; a Content-Length set by the
// handler is ignored. Keys that are not valid tokens are dropped. A 500
// response is written without headers or body.
func Serialize(res *wirehttp.Response) []byte {
	var buf bytes.Buffer

	headers := res.Headers
	body := res.Body
	if res.StatusCode == wirehttp.StatusInternalServerError {
		headers = nil
		body = nil
	}

	protocol := res.Protocol
	if protocol == "" {
		protocol = wirehttp.Protocol
	}
	reason := res.Reason
	if reason == "" {
		reason = res.StatusCode.Reason()
	}

	buf.WriteString(protocol)
	buf.WriteByte(' ')
	buf.WriteString(strconv.Itoa(int(res.StatusCode)))
	buf.WriteByte(' ')
	buf.WriteString(reason)
	buf.WriteString("\r\n")

	keys := make([]string, 0, len(headers))
	for k := range headers {
		if strings.EqualFold(k, "Content-Length") || !isToken(k) {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(sanitizeHeaderValue(headers[k]))
		buf.WriteString("\r\n")
	}

	if len(body) > 0 {
		buf.WriteString("Content-Length: ")
		buf.WriteString(strconv.Itoa(len(body)))
		buf.WriteString("\r\n")
	}

	buf.WriteString("\r\n")
	buf.Write(body)

	return buf.Bytes()
}

// WriteResponse serializes res and writes it to w in one call.
func WriteResponse(w io.Writer, res *wirehttp.Response) error {
	_, err := w.Write(Serialize(res))
	return err
}

// isToken reports whether k is a non-empty RFC 9110 token. Keys that are not
// are dropped rather than repaired.
func isToken(k string) bool {
	if k == "" {
		return false
	}
	for i := 0; i < len(k); i++ {
		c := k[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			continue
		}
		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
			continue
		default:
			return false
		}
	}
	return true
}

// sanitizeHeaderValue drops CR, LF and other control bytes except HTAB so a
// handler-supplied value cannot split the head.
func sanitizeHeaderValue(v string) string {
	if !strings.ContainsFunc(v, func(r rune) bool { return (r < 0x20 && r != '\t') || r == 0x7f }) {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == 0x7f || (c < 0x20 && c != '\t') {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
