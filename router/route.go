package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sagarc03/wirehttp"
)

// segmentClass is the character class a placeholder segment may contain.
const segmentClass = `[A-Za-z0-9_.-]+`

// param records which non-empty path segment (1-based) binds which name.
type param struct {
	index int
	name  string
}

// route holds every method bound to one path key.
type route struct {
	key      string
	path     string
	pattern  *regexp.Regexp
	params   []param
	handlers map[wirehttp.Method]wirehttp.Handler
	order    int
}

func (r *route) isTemplate() bool {
	return r.pattern != nil
}

// extract reads placeholder values from target by segment position.
func (r *route) extract(target string) map[string]string {
	segments := splitSegments(target)
	out := make(map[string]string, len(r.params))
	for _, p := range r.params {
		if p.index-1 < len(segments) {
			out[p.name] = segments[p.index-1]
		}
	}
	return out
}

func splitSegments(path string) []string {
	var segments []string
	for s := range strings.SplitSeq(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func placeholderName(segment string) (string, bool) {
	if len(segment) < 2 || segment[0] != '{' || segment[len(segment)-1] != '}' {
		return "", false
	}
	return segment[1 : len(segment)-1], true
}

// compile turns a template into its path key, optional anchored pattern
// and placeholder positions.
func compile(template string) (string, *regexp.Regexp, []param, error) {
	segments := splitSegments(strings.TrimSpace(template))
	literal := "/" + strings.Join(segments, "/")

	var params []param
	seen := make(map[string]bool)
	var expr strings.Builder
	expr.WriteString("^")

	for i, seg := range segments {
		expr.WriteString("/")
		name, ok := placeholderName(seg)
		if !ok {
			expr.WriteString(regexp.QuoteMeta(seg))
			continue
		}
		if name == "" {
			return "", nil, nil, fmt.Errorf("compile %q: empty placeholder name", template)
		}
		if seen[name] {
			return "", nil, nil, fmt.Errorf("compile %q: duplicate placeholder %q", template, name)
		}
		seen[name] = true
		params = append(params, param{index: i + 1, name: name})
		expr.WriteString("(" + segmentClass + ")")
	}

	if len(params) == 0 {
		return literal, nil, nil, nil
	}

	expr.WriteString("$")
	pattern, err := regexp.Compile(expr.String())
	if err != nil {
		return "", nil, nil, fmt.Errorf("compile %q: %w", template, err)
	}
	return pattern.String(), pattern, params, nil
}
