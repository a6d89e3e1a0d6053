package routing

import (
	"strings"
)

type segmentKind int

// Ordered from most to least specific.
const (
	staticSegment segmentKind = iota
	paramSegment
	wildcardSegment
)

type segment struct {
	kind  segmentKind
	value string
}

type compiledRoute struct {
	Route
	segments []segment
}

func compile(r Route) compiledRoute {
	parts := splitPath(r.Pattern)
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		switch {
		case p == "*":
			segs = append(segs, segment{kind: wildcardSegment})
		case strings.HasPrefix(p, ":"):
			segs = append(segs, segment{kind: paramSegment, value: p[1:]})
		default:
			segs = append(segs, segment{kind: staticSegment, value: p})
		}
	}
	return compiledRoute{Route: r, segments: segs}
}

// match returns the captured params when parts satisfy the route
func (c compiledRoute) match(parts []string) (map[string]string, bool) {
	params := map[string]string{}
	for i, seg := range c.segments {
		if seg.kind == wildcardSegment {
			params["*"] = strings.Join(parts[i:], "/")
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		switch seg.kind {
		case staticSegment:
			if parts[i] != seg.value {
				return nil, false
			}
		case paramSegment:
			params[seg.value] = parts[i]
		}
	}
	if len(parts) != len(c.segments) {
		return nil, false
	}
	return params, true
}

// moreSpecific reports whether a should win over b when both match
func (c compiledRoute) moreSpecific(other compiledRoute) bool {
	n := len(c.segments)
	if len(other.segments) < n {
		n = len(other.segments)
	}
	for i := 0; i < n; i++ {
		if c.segments[i].kind != other.segments[i].kind {
			return c.segments[i].kind < other.segments[i].kind
		}
	}
	return len(c.segments) > len(other.segments)
}

// NormalizePath strips query, fragment and trailing slashes
func NormalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	parts := splitPath(path)
	return "/" + strings.Join(parts, "/")
}

func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
