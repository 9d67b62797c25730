package taggerscript

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Script represents a complete TaggerScript
// A script is a flat sequence of text, escapes, variables and function calls
type Script struct {
	Pos   lexer.Position
	Parts []*Part `@@*`
}

// Part represents a single element of a script or of a function argument
type Part struct {
	Pos      lexer.Position
	Escape   *string   `  @Escape`
	Function *Function `| @@`
	Variable *string   `| @Variable`
	Text     *string   `| @( Text | ArgText )`
}

// Function represents a function call
// Example: $if(%albumartist%,%albumartist%,%artist%)
type Function struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Open   string     `@Func`
	Items  []*ArgItem `@@* RParen`
}

// ArgItem is either an argument separator or a part of the current argument.
// Arguments are rebuilt from the flat item list by Function.Args.
type ArgItem struct {
	Comma bool  `  @Comma`
	Part  *Part `| @@`
}

// Name returns the function name without the leading '$' and trailing '('
func (f *Function) Name() string {
	return strings.TrimSuffix(strings.TrimPrefix(f.Open, "$"), "(")
}

// Args returns the arguments of the call, each one a list of parts.
//
// An argument may be empty, so "$f(,)" has two arguments. A call whose only
// argument is empty has no arguments at all: "$f()" is a zero argument call.
func (f *Function) Args() [][]*Part {
	args := [][]*Part{nil}
	for _, item := range f.Items {
		if item.Comma {
			args = append(args, nil)
			continue
		}
		args[len(args)-1] = append(args[len(args)-1], item.Part)
	}
	if len(args) == 1 && len(args[0]) == 0 {
		return nil
	}
	return args
}

// VariableName returns the variable name without the surrounding '%'
func (p *Part) VariableName() string {
	if p.Variable == nil {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(*p.Variable, "%"), "%")
}

// Literal returns the literal value of a text or escape part.
// Escape sequences are decoded; variables and functions yield "".
func (p *Part) Literal() string {
	switch {
	case p.Text != nil:
		return *p.Text
	case p.Escape != nil:
		return decodeEscape(*p.Escape)
	}
	return ""
}

// String reconstructs the source text of the part
func (p *Part) String() string {
	switch {
	case p.Escape != nil:
		return *p.Escape
	case p.Function != nil:
		return p.Function.String()
	case p.Variable != nil:
		return *p.Variable
	case p.Text != nil:
		return *p.Text
	}
	return ""
}

// String reconstructs the source text of the call
func (f *Function) String() string {
	var sb strings.Builder
	sb.WriteString(f.Open)
	for _, item := range f.Items {
		if item.Comma {
			sb.WriteByte(',')
			continue
		}
		sb.WriteString(item.Part.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// String reconstructs the source text of the script
func (s *Script) String() string {
	var sb strings.Builder
	for _, part := range s.Parts {
		sb.WriteString(part.String())
	}
	return sb.String()
}

// Walk calls fn for every function call in the script, outermost first.
// Returning false from fn skips the arguments of that call.
func Walk(s *Script, fn func(*Function) bool) {
	walkParts(s.Parts, fn)
}

func walkParts(parts []*Part, fn func(*Function) bool) {
	for _, part := range parts {
		if part.Function == nil {
			continue
		}
		if !fn(part.Function) {
			continue
		}
		for _, item := range part.Function.Items {
			if item.Part != nil {
				walkParts([]*Part{item.Part}, fn)
			}
		}
	}
}

// Summary counts the elements of a parsed script
type Summary struct {
	Functions int
	Variables int
	Texts     int
	Escapes   int
}

// Summarize counts every part of the script, including parts nested in
// function arguments.
func Summarize(s *Script) Summary {
	var sum Summary
	var visit func(parts []*Part)
	visit = func(parts []*Part) {
		for _, part := range parts {
			switch {
			case part.Function != nil:
				sum.Functions++
				for _, arg := range part.Function.Args() {
					visit(arg)
				}
			case part.Variable != nil:
				sum.Variables++
			case part.Escape != nil:
				sum.Escapes++
			case part.Text != nil:
				sum.Texts++
			}
		}
	}
	visit(s.Parts)
	return sum
}

// decodeEscape converts a lexed escape sequence to the text it stands for
func decodeEscape(esc string) string {
	if len(esc) < 2 {
		return esc
	}
	switch esc[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'u':
		code, err := strconv.ParseUint(esc[2:], 16, 32)
		if err != nil {
			return esc
		}
		return string(rune(code))
	}
	return esc[1:]
}
