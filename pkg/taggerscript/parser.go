package taggerscript

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
)

// Parser represents a TaggerScript parser
type Parser struct {
	parser       *participle.Parser[Script]
	registry     *Registry
	allowUnknown bool
}

// Option configures a Parser
type Option func(p *Parser) error

// WithRegistry sets the functions the parser accepts.
// The default is DefaultRegistry().
func WithRegistry(r *Registry) Option {
	return func(p *Parser) error {
		if r == nil {
			return fmt.Errorf("registry is nil")
		}
		p.registry = r
		return nil
	}
}

// WithUnknownFunctions lets scripts call functions missing from the registry.
// Calls to unknown functions are not checked for argument counts.
func WithUnknownFunctions(flag bool) Option {
	return func(p *Parser) error {
		p.allowUnknown = flag
		return nil
	}
}

// NewParser creates a new TaggerScript parser instance
func NewParser(options ...Option) (*Parser, error) {
	parser, err := participle.Build[Script](
		participle.Lexer(TaggerLexer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	p := &Parser{
		parser:   parser,
		registry: DefaultRegistry(),
	}
	for _, option := range options {
		if err := option(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Registry returns the functions the parser accepts
func (p *Parser) Registry() *Registry {
	return p.registry
}

// ParseString parses a script from a string.
// A script the grammar rejects yields a *SyntaxError.
func (p *Parser) ParseString(text string) (*Script, error) {
	script, err := p.parser.ParseString("", text)
	if err != nil {
		return nil, translateError(text, err)
	}
	if err := p.check(text, script); err != nil {
		return nil, err
	}
	return script, nil
}

// Parse parses a script from a reader
func (p *Parser) Parse(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return p.ParseString(string(data))
}

// ParseFile parses a script from a file path
func (p *Parser) ParseFile(filename string) (*Script, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}
