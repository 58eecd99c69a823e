package storage

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases a title, strips accents and anything that is not a
// letter, digit, hyphen or underscore, and joins words with hyphens.
// "My Movie" becomes "my-movie".
func Slugify(title string) string {
	s, _, err := transform.String(deaccent, title)
	if err != nil {
		s = title
	}
	s = strings.ToLower(s)

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ResolveUnique returns a free key of the form dir/base.tag.ext, appending
// _1, _2, ... to base until no stored file claims the name. The existence
// check and the eventual write are not atomic; two callers resolving the
// same name at the same instant can both receive it.
func ResolveUnique(ctx context.Context, store Storage, dir, base, tag, ext string) (string, error) {
	key := fmt.Sprintf("%s/%s.%s.%s", dir, base, tag, ext)
	taken, err := store.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check %s: %w", key, err)
	}

	for n := 1; taken; n++ {
		key = fmt.Sprintf("%s/%s_%d.%s.%s", dir, base, n, tag, ext)
		taken, err = store.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", key, err)
		}
	}
	return key, nil
}
