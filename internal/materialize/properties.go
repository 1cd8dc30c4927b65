package materialize

import (
	"sort"
	"strings"
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escape applies the subset of java.util.Properties escaping that matters
// for a line-oriented reader: backslashes and line breaks always, and in keys
// the separators '=', ':' and spaces. Values keep ':' literal so server.N
// lines read naturally.
func escape(s string, key bool) string {
	if !strings.ContainsAny(s, "\\\n\r=: ") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '=', ':', ' ':
			if key {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
