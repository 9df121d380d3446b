// Package parser turns input files into the text payload fed to the record pipeline.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Parser defines a document parser implementation.
type Parser interface {
	CanParse(filename string) bool
	Parse(content []byte) (string, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseFile selects a parser based on filename and returns parsed text content.
func ParseFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return ParseBytes(path, data)
}

// ParseBytes parses already loaded content; filename only selects the parser.
// A leading UTF-8 BOM is dropped for every format.
func ParseBytes(filename string, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := binaryFormats[ext]; ok {
		return "", fmt.Errorf("%s: %w (save it as .xlsx, .docx, .csv or .txt)", ext, ErrUnsupported)
	}
	for _, p := range registry {
		if p.CanParse(filename) {
			return p.Parse(data)
		}
	}
	// Fallback to plain text
	return string(data), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TrimBOM drops a leading byte order mark from text that did not come through
// ParseBytes (stdin, flags, request bodies). It would otherwise stick to the
// first identifier.
func TrimBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

// Payload is the text read from one input file.
type Payload struct {
	Path string
	Text string
}

// ReadAll parses every path concurrently and returns payloads in argument order.
// The first failure cancels the remaining reads.
func ReadAll(ctx context.Context, paths []string) ([]Payload, error) {
	out := make([]Payload, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := ParseFile(p)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			out[i] = Payload{Path: p, Text: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func init() {
	// Register default parsers
	Register(txtParser{})
	Register(markdownParser{})
	Register(docxParser{})
	Register(csvParser{})
	Register(xlsxParser{})
}

// ErrUnsupported indicates a format is not supported yet.
var ErrUnsupported = errors.New("unsupported document format")

// binaryFormats would decode as garbage through the plain-text fallback.
var binaryFormats = map[string]struct{}{
	".xls": {}, ".doc": {}, ".pdf": {}, ".ods": {}, ".odt": {},
}
