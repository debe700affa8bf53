// Package localscan implements the local-file secret-scan mode: the
// same rule engine as the crawler, pointed at a file tree instead of
// the network.
package localscan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/recon-suite/secretscraper/crawl"
	"github.com/recon-suite/secretscraper/secrets"
)

// Result holds the non-empty secret sets found, keyed by file path.
type Result struct {
	Secrets map[string][]secrets.Secret
}

// Scanner walks one or more file-tree roots and runs a secrets.Matcher
// over every regular file found.
type Scanner struct {
	matcher secrets.Matcher
}

// New builds a Scanner backed by matcher.
func New(matcher secrets.Matcher) *Scanner {
	return &Scanner{matcher: matcher}
}

// Scan gathers every regular file under root (root itself, if it is a
// file) and scans each one. It fails fast with a *crawl.FileScanError
// if root doesn't exist.
func (s *Scanner) Scan(root string) (*Result, error) {
	files, err := gatherFiles(root)
	if err != nil {
		return nil, err
	}

	result := &Result{Secrets: make(map[string][]secrets.Secret)}
	for _, path := range files {
		found, err := s.scanFile(path)
		if err != nil {
			return nil, err
		}
		if len(found) > 0 {
			result.Secrets[path] = found
		}
	}
	return result, nil
}

func (s *Scanner) scanFile(path string) ([]secrets.Secret, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &crawl.FileScanError{Msg: fmt.Sprintf("reading %q: %v", path, err)}
	}
	text := toUTF8Lossy(raw)

	found, err := s.matcher.Handle(text)
	if err != nil {
		return nil, &crawl.FileScanError{Msg: fmt.Sprintf("scanning %q: %v", path, err)}
	}

	seen := make(map[secrets.Secret]struct{}, len(found))
	out := make([]secrets.Secret, 0, len(found))
	for _, sec := range found {
		if _, ok := seen[sec]; ok {
			continue
		}
		seen[sec] = struct{}{}
		out = append(out, sec)
	}
	return out, nil
}

// gatherFiles resolves root into the list of regular files to scan:
// root itself if it's a file, or every regular file under it if it's
// a directory.
func gatherFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &crawl.FileScanError{Msg: fmt.Sprintf("path %q does not exist", root)}
	}

	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &crawl.FileScanError{Msg: fmt.Sprintf("walking %q: %v", root, err)}
	}
	return files, nil
}

// toUTF8Lossy decodes raw as UTF-8, substituting the replacement
// character for any invalid byte sequence rather than failing.
func toUTF8Lossy(raw []byte) string {
	return string([]rune(string(raw)))
}
