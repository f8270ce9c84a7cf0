package platform

import (
	_ "embed"
	"strings"
)

//go:embed arty.io
var artyIO string

// Arty returns the Digilent Arty A7-35 board.
func Arty() *Platform {
	parser, err := NewParser()
	if err != nil {
		panic(err)
	}

	f, err := parser.ParseString("arty.io", artyIO)
	if err != nil {
		panic(err)
	}

	p, err := FromIOFile(f)
	if err != nil {
		panic(err)
	}

	return p
}

// Load creates a platform from an IO description file. The name "arty"
// selects the built-in board.
func Load(path string) (*Platform, error) {
	if path == "" || strings.EqualFold(path, "arty") {
		return Arty(), nil
	}

	parser, err := NewParser()
	if err != nil {
		return nil, err
	}

	f, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}

	return FromIOFile(f)
}
