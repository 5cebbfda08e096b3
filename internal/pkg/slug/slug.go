package slug

import "strings"

// Make derives a URL-safe slug from a guild name: lowercase, runs of
// non-alphanumeric characters collapse to a single hyphen, leading and
// trailing hyphens are trimmed. Slugs are best-effort display keys, not
// unique: two guilds named alike share a slug, and every store key is
// the guild ID.
func Make(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		case b.Len() > 0 && !hyphen:
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
