package extract

import (
	"os"
	"strings"
	"unicode/utf8"
)

// readTextFile reads a plain text or log file, substituting the Unicode
// replacement rune for undecodable bytes instead of failing.
func readTextFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	s := string(b)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	return s, nil
}
