package meta

import (
	"os"
	"strings"
	"unicode"
)

// expandEnvExpr replaces every ${env.KEY} occurrence in value with the
// environment variable KEY (empty when unset). A malformed expression is
// kept literal: a missing closing brace keeps the rest of the string as
// is, an invalid key keeps the prefix and rescans the remainder so nested
// expressions still expand.
func expandEnvExpr(value string) string {
	const prefix = "${env."
	var out strings.Builder
	for {
		idx := strings.Index(value, prefix)
		if idx < 0 {
			out.WriteString(value)
			return out.String()
		}
		out.WriteString(value[:idx])
		rest := value[idx+len(prefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			out.WriteString(value[idx:])
			return out.String()
		}
		if key := rest[:end]; isEnvKey(key) {
			out.WriteString(os.Getenv(key))
			value = rest[end+1:]
			continue
		}
		out.WriteString(prefix)
		value = rest
	}
}

// isEnvKey accepts letters, digits and underscore; the empty key is valid
// and expands to nothing.
func isEnvKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
