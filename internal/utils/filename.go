package utils

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename returns a version of name that is safe to join to a
// directory. Directory components are dropped, unicode is folded to ASCII,
// runs of whitespace become a single underscore and any remaining character
// outside [A-Za-z0-9_.-] is removed. The result may be empty.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		return ""
	}

	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}

	name = strings.Join(strings.Fields(b.String()), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// Ext returns the lowercased extension of name without the dot.
func Ext(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}
