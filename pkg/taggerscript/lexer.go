package taggerscript

import (
	"unicode"

	"github.com/alecthomas/participle/v2/lexer"
)

// TaggerLexer defines the lexical structure of TaggerScript.
//
// Scripts have two contexts. At the top level everything that is not an
// escape, a variable or a function call is literal text, including commas
// and parentheses. Inside a function's argument list commas separate
// arguments, ')' closes the call and '(' is not allowed at all, so the
// lexer pushes an "Args" state on every "$name(" and pops it on ')'.
var TaggerLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		lexer.Include("Common"),

		// Literal text, up to the next escape, variable or function
		{Name: "Text", Pattern: `[^\\$%]+`},
	},
	"Args": {
		lexer.Include("Common"),

		{Name: "Comma", Pattern: `,`},
		{Name: "RParen", Pattern: `\)`, Action: lexer.Pop()},

		// Literal text inside an argument
		{Name: "ArgText", Pattern: `[^\\$%(),]+`},
	},
	"Common": {
		// Escape sequences: \n \t \$ \% \( \) \, \\ and \uXXXX
		{Name: "Escape", Pattern: `\\(?:u[0-9A-Fa-f]{4}|[nt$%(),\\])`},

		// Function call opener, e.g. "$upper("
		{Name: "Func", Pattern: `\$[\p{L}\p{N}_]+\(`, Action: lexer.Push("Args")},

		// Variable reference, e.g. "%title%" or "%_releasecomment%"
		{Name: "Variable", Pattern: `%[\p{L}\p{N}_:]*%`},
	},
})

// isIdentRune reports whether ch may appear in a function name.
func isIdentRune(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsNumber(ch)
}

// isVariableRune reports whether ch may appear in a variable name.
func isVariableRune(ch rune) bool {
	return ch == ':' || isIdentRune(ch)
}
