package utils

import (
	"path"
	"strings"
)

// MatchAntPattern reports whether requestPath matches an Ant-style pattern.
// "**" matches zero or more path segments, "*" and "?" match within one segment.
//
//	/api/v1/auth/**            matches /api/v1/auth and /api/v1/auth/login/otp
//	/api/v1/subscriptions      matches only itself
//	/api/*/profiles/?          matches /api/v1/profiles/7
func MatchAntPattern(pattern string, requestPath string) bool {
	return matchSegments(splitPath(pattern), splitPath(requestPath))
}

func splitPath(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func matchSegments(pattern []string, segments []string) bool {
	for len(pattern) > 0 {
		head := pattern[0]
		if head == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(segments); i++ {
				if matchSegments(rest, segments[i:]) {
					return true
				}
			}
			return false
		}

		if len(segments) == 0 {
			return false
		}
		if ok, err := path.Match(head, segments[0]); err != nil || !ok {
			return false
		}
		pattern = pattern[1:]
		segments = segments[1:]
	}

	return len(segments) == 0
}
