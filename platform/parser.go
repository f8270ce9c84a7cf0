package platform

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// Parser reads IO description files.
type Parser struct {
	parser *participle.Parser[IOFile]
}

// NewParser creates a new IO description parser.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[IOFile](
		participle.Lexer(IOLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// Parse parses an IO description from a reader.
func (p *Parser) Parse(name string, r io.Reader) (*IOFile, error) {
	f, err := p.parser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return f, nil
}

// ParseString parses an IO description from a string.
func (p *Parser) ParseString(name, input string) (*IOFile, error) {
	f, err := p.parser.ParseString(name, input)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return f, nil
}

// ParseFile parses an IO description file.
func (p *Parser) ParseFile(filename string) (*IOFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(filename, file)
}

// Resources converts the declarations into resources, in file order.
func (f *IOFile) Resources() []Resource {
	resources := make([]Resource, 0, len(f.Decls))

	for _, d := range f.Decls {
		r := Resource{Name: d.Name, Number: d.Number}
		for _, item := range d.Items {
			r.Pins = append(r.Pins, item.pins()...)
			if item.IOStandard != nil {
				r.IOStandard = *item.IOStandard
			}
			if item.Misc != nil {
				r.Misc = append(r.Misc, *item.Misc)
			}
			if item.Inverted {
				r.Inverted = true
			}
			if item.Subsignal != nil {
				r.Subsignals = append(r.Subsignals, item.Subsignal.subsignal())
			}
		}

		resources = append(resources, r)
	}

	return resources
}

func (s *SubsignalDecl) subsignal() Subsignal {
	sub := Subsignal{Name: s.Name}

	for _, item := range s.Items {
		sub.Pins = append(sub.Pins, item.pins()...)
		if item.IOStandard != nil {
			sub.IOStandard = *item.IOStandard
		}
		if item.Misc != nil {
			sub.Misc = append(sub.Misc, *item.Misc)
		}
	}

	return sub
}

func (i *IOItem) pins() []string {
	if i.Pins == nil {
		return nil
	}

	var pins []string
	for _, group := range i.Pins.Pins {
		pins = append(pins, strings.Fields(group)...)
	}

	return pins
}
