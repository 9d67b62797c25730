package taggerscript

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Kinds of syntax errors. A *SyntaxError unwraps to one of these, so
// callers can branch with errors.Is.
var (
	ErrUnexpectedEOF       = errors.New("unexpected end of script")
	ErrUnexpectedCharacter = errors.New("unexpected character")
	ErrInvalidUnicode      = errors.New("invalid unicode escape")
	ErrUnknownFunction     = errors.New("unknown function")
	ErrArity               = errors.New("wrong number of arguments")
)

// SyntaxError reports a script rejected by the parser.
// Its message is prefixed with the 1-based line and column of the problem.
type SyntaxError struct {
	Pos  lexer.Position
	Msg  string
	kind error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.kind
}

func newSyntaxError(kind error, pos lexer.Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...), kind: kind}
}

func endOfScript(text string) *SyntaxError {
	return newSyntaxError(ErrUnexpectedEOF, positionAt(text, len(text)), "Unexpected end of script")
}

// translateError converts participle's lexer and parser errors into a
// *SyntaxError. Errors that do not come from the grammar are returned
// wrapped, so they are never mistaken for a rejected script.
func translateError(text string, err error) error {
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		return diagnose(text, lexErr.Pos.Offset)
	}

	var tokErr *participle.UnexpectedTokenError
	if errors.As(err, &tokErr) {
		if tokErr.Unexpected.EOF() {
			return endOfScript(text)
		}
		return diagnose(text, tokErr.Unexpected.Pos.Offset)
	}

	var perr participle.Error
	if errors.As(err, &perr) {
		if perr.Position().Offset >= len(text) {
			return endOfScript(text)
		}
		return newSyntaxError(ErrUnexpectedCharacter, perr.Position(), "%s", perr.Message())
	}

	return fmt.Errorf("parse script: %w", err)
}

// diagnose explains why the text at offset could not be tokenized.
//
// The stateful lexer only knows that nothing matched, so this rescans the
// construct starting at offset to find the character that broke it:
// an empty or unterminated function name, a variable that never closes,
// a bad escape, or a character not allowed in the current context.
func diagnose(text string, offset int) *SyntaxError {
	if offset >= len(text) {
		return endOfScript(text)
	}

	ch, width := utf8.DecodeRuneInString(text[offset:])
	switch ch {
	case '$':
		if strings.HasPrefix(text[offset+width:], "(") {
			return newSyntaxError(ErrUnknownFunction, positionAt(text, offset), "Unknown function ''")
		}
		return scanName(text, offset+width, isIdentRune)
	case '%':
		return scanName(text, offset+width, isVariableRune)
	case '\\':
		next := offset + width
		if next >= len(text) {
			return endOfScript(text)
		}
		esc, _ := utf8.DecodeRuneInString(text[next:])
		if esc == 'u' {
			code := text[next+1:]
			if utf8.RuneCountInString(code) > 4 {
				code = string([]rune(code)[:4])
			}
			return newSyntaxError(ErrInvalidUnicode, positionAt(text, offset), "Invalid unicode character '\\u%s'", code)
		}
		return newSyntaxError(ErrUnexpectedCharacter, positionAt(text, next), "Unexpected character '%c'", esc)
	}
	return newSyntaxError(ErrUnexpectedCharacter, positionAt(text, offset), "Unexpected character '%c'", ch)
}

// scanName skips name characters from offset and reports the first
// character that is not one, or the end of the script.
func scanName(text string, offset int, valid func(rune) bool) *SyntaxError {
	for offset < len(text) {
		ch, width := utf8.DecodeRuneInString(text[offset:])
		if !valid(ch) {
			return newSyntaxError(ErrUnexpectedCharacter, positionAt(text, offset), "Unexpected character '%c'", ch)
		}
		offset += width
	}
	return endOfScript(text)
}

// positionAt computes the line and column of a byte offset.
// Columns count runes, matching the positions participle reports.
func positionAt(text string, offset int) lexer.Position {
	if offset > len(text) {
		offset = len(text)
	}
	pos := lexer.Position{Offset: offset, Line: 1, Column: 1}
	lineStart := 0
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			pos.Line++
			lineStart = i + 1
		}
	}
	pos.Column = utf8.RuneCountInString(text[lineStart:offset]) + 1
	return pos
}
