package parser

import "strings"

type txtParser struct{}

func (txtParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".text")
}

func (txtParser) Parse(content []byte) (string, error) {
	return string(content), nil
}
