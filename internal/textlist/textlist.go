// Package textlist reads newline-delimited list files such as document
// restriction lists and lists of store locations.
package textlist

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/agentstation/annomerge/pkg/errors"
)

// ReadFile reads the non-blank lines of path. A leading byte order mark is
// dropped and surrounding whitespace is trimmed from every line.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path is user supplied on purpose
	if err != nil {
		return nil, errors.WrapIO("read list", path, err)
	}
	defer func() { _ = f.Close() }()

	lines, err := Read(f)
	if err != nil {
		return nil, errors.WrapIO("read list", path, err)
	}
	return lines, nil
}

// Read reads the non-blank lines of r.
func Read(r io.Reader) ([]string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
