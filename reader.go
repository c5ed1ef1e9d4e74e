package bookzip

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrMalformedText reports an input file that is not valid UTF-8.
var ErrMalformedText = errors.New("bookzip: malformed UTF-8 input")

// readText reads the file at path as a sequence of code points. Decoding is
// strict: any invalid UTF-8 sequence fails the file rather than dropping or
// substituting code points.
func readText(path string) ([]rune, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := make([]rune, 0, len(data))
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return nil, fmt.Errorf("%w: %s at byte %d", ErrMalformedText, path, i)
		}
		text = append(text, r)
		i += size
	}
	return text, nil
}

// writeText writes text as UTF-8 to path.
func writeText(path string, text []rune) error {
	return os.WriteFile(path, []byte(string(text)), 0o644)
}

// listBooks returns the paths of the .txt entries directly under dir, in the
// order the OS reports them. The match is a substring match on the name, not
// an extension check, and no sorting is applied: the archive's file ordinals
// follow whatever order the filesystem enumerates.
func listBooks(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	var books []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.Contains(e.Name(), ".txt") {
			books = append(books, filepath.Join(dir, e.Name()))
		}
	}
	return books, nil
}
