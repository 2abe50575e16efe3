package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Parser extracts plain text from one document format.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte) (string, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseFile selects a parser based on filename and returns the document text
// with one paragraph per line. Unknown extensions are read as plain text.
func ParseFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	for _, p := range registry {
		if p.CanParse(path) {
			text, err := p.Parse(data)
			if err != nil {
				return "", fmt.Errorf("parse %s: %w", filepath.Base(path), err)
			}
			return text, nil
		}
	}
	return normalizeNewlines(data), nil
}

// Supported reports whether a registered parser handles filename.
func Supported(filename string) bool {
	for _, p := range registry {
		if p.CanParse(filename) {
			return true
		}
	}
	return false
}

func normalizeNewlines(b []byte) string {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	return strings.ReplaceAll(string(b), "\r", "\n")
}

func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func init() {
	Register(txtParser{})
	Register(markdownParser{})
	Register(docxParser{})
}
