package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sagarc03/wirehttp"
)

const (
	DefaultMaxHeaderBytes = 64 << 10
	DefaultMaxBodyBytes   = 10 << 20

	readChunkSize = 1024
)

var headTerminator = []byte("\r\n\r\n")

// Parser reads one request from a byte stream. The zero value uses the
// default limits.
type Parser struct {
	// MaxHeaderBytes caps the bytes read before the head terminator is seen.
	MaxHeaderBytes int
	// MaxBodyBytes caps the accepted Content-Length.
	MaxBodyBytes int64
}

func (p *Parser) maxHeaderBytes() int {
	if p.MaxHeaderBytes > 0 {
		return p.MaxHeaderBytes
	}
	return DefaultMaxHeaderBytes
}

func (p *Parser) maxBodyBytes() int64 {
	if p.MaxBodyBytes > 0 {
		return p.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}

// Parse reads a request head and body from r.
// It returns an error wrapping wirehttp.ErrMalformedRequest or
// wirehttp.ErrInvalidMethod on failure.
func (p *Parser) Parse(r io.Reader) (*wirehttp.Request, error) {
	head, prefix, err := p.readHead(r)
	if err != nil {
		return nil, err
	}

	if !utf8.Valid(head) {
		return nil, fmt.Errorf("%w: head is not valid utf-8", wirehttp.ErrMalformedRequest)
	}

	lines := strings.Split(string(head), "\n")
	method, target, version, err := parseRequestLine(strings.TrimSuffix(lines[0], "\r"))
	if err != nil {
		return nil, err
	}

	headers := parseHeaders(lines[1:])

	body, err := p.readBody(r, prefix, contentLength(headers))
	if err != nil {
		return nil, err
	}

	return &wirehttp.Request{
		Method:     method,
		Target:     target,
		Version:    version,
		Headers:    headers,
		Body:       body,
		PathParams: map[string]string{},
	}, nil
}

// readHead accumulates reads until the head terminator appears and returns
// the head (without terminator) and any body bytes read past it.
func (p *Parser) readHead(r io.Reader) (head, prefix []byte, err error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	limit := p.maxHeaderBytes()

	for {
		n, readErr := r.Read(chunk)
		if n > 0 {
			// Only rescan the tail that could contain a new terminator.
			start := max(0, buf.Len()-len(headTerminator)+1)
			buf.Write(chunk[:n])

			end := bytes.Index(buf.Bytes()[start:], headTerminator)
			if end >= 0 {
				end += start
			}
			if end > limit || (end < 0 && buf.Len() > limit) {
				return nil, nil, fmt.Errorf("%w: head exceeds %d bytes", wirehttp.ErrMalformedRequest, limit)
			}
			if end >= 0 {
				data := buf.Bytes()
				return data[:end], data[end+len(headTerminator):], nil
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil, nil, fmt.Errorf("%w: stream ended before end of head", wirehttp.ErrMalformedRequest)
			}
			return nil, nil, fmt.Errorf("%w: read head: %w", wirehttp.ErrMalformedRequest, readErr)
		}
	}
}

func parseRequestLine(line string) (wirehttp.Method, string, string, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 || parts[1] == "" {
		return "", "", "", fmt.Errorf("%w: bad request line %q", wirehttp.ErrMalformedRequest, line)
	}

	method := wirehttp.ParseMethod(parts[0])
	if method == wirehttp.MethodUnknown {
		return "", "", "", fmt.Errorf("%w: %q", wirehttp.ErrInvalidMethod, parts[0])
	}

	return method, normalizeTarget(parts[1]), parts[2], nil
}

// normalizeTarget strips trailing slashes but leaves a lone "/" alone.
func normalizeTarget(target string) string {
	for len(target) > 1 && strings.HasSuffix(target, "/") {
		target = target[:len(target)-1]
	}
	return target
}

func parseHeaders(lines []string) map[string]string {
	headers := make(map[string]string, len(lines))
	for _, l := range lines {
		key, value, ok := strings.Cut(strings.TrimSuffix(l, "\r"), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		headers[key] = value
	}
	return headers
}

// contentLength returns 0 when the header is absent or not a non-negative integer.
func contentLength(headers map[string]string) int64 {
	v, ok := headers["Content-Length"]
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (p *Parser) readBody(r io.Reader, prefix []byte, length int64) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	if limit := p.maxBodyBytes(); length > limit {
		return nil, fmt.Errorf("%w: %w: content-length %d exceeds %d", wirehttp.ErrMalformedRequest, wirehttp.ErrBodyTooLarge, length, limit)
	}

	body := make([]byte, length)
	n := copy(body, prefix)
	if int64(n) == length {
		return body, nil
	}

	if _, err := io.ReadFull(r, body[n:]); err != nil {
		return nil, fmt.Errorf("%w: read body: %w", wirehttp.ErrMalformedRequest, err)
	}
	return body, nil
}
