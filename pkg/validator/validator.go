// Package validator checks a single TaggerScript file and reports the
// outcome as a banner on a writer and a process exit code.
package validator

import (
	"fmt"
	"io"
	"io/fs"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/validate-tagger/pkg/taggerscript"
)

// Banners written by Outcome.Report.
const (
	UsageBanner         = "Usage: validate_tagger.py <script.pts>"
	ValidBanner         = "✅ TaggerScript syntax is valid."
	SyntaxErrorBanner   = "❌ TaggerScript syntax error:"
	NotFoundFormat      = "❌ ERROR: File '%s' not found"
	UnreadableFormat    = "❌ ERROR: File '%s' could not be read:"
	NotTextFormat       = "❌ ERROR: File '%s' is not valid UTF-8 text:"
	InternalErrorBanner = "❌ ERROR: Internal parser failure:"
)

// Kind classifies the result of a validation.
type Kind int

const (
	Valid Kind = iota
	Usage
	FileNotFound
	FileUnreadable
	NotText
	SyntaxError
	InternalError
)

func (k Kind) String() string {
	switch k {
	case Valid:
		return "valid"
	case Usage:
		return "usage"
	case FileNotFound:
		return "file-not-found"
	case FileUnreadable:
		return "file-unreadable"
	case NotText:
		return "not-text"
	case SyntaxError:
		return "syntax-error"
	case InternalError:
		return "internal-error"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Outcome is the result of one validation.
type Outcome struct {
	Kind   Kind
	Path   string
	Detail string // second line of the report, if any
	Err    error
}

// UsageOutcome is the outcome of an invocation without a script path.
func UsageOutcome() Outcome {
	return Outcome{Kind: Usage}
}

// Message returns the report text without the trailing newline.
func (o Outcome) Message() string {
	var head string
	switch o.Kind {
	case Valid:
		return ValidBanner
	case Usage:
		return UsageBanner
	case FileNotFound:
		return fmt.Sprintf(NotFoundFormat, o.Path)
	case FileUnreadable:
		head = fmt.Sprintf(UnreadableFormat, o.Path)
	case NotText:
		head = fmt.Sprintf(NotTextFormat, o.Path)
	case SyntaxError:
		head = SyntaxErrorBanner
	default:
		head = InternalErrorBanner
	}
	return head + "\n" + o.Detail
}

// Report writes the outcome's message to w.
func (o Outcome) Report(w io.Writer) error {
	_, err := fmt.Fprintln(w, o.Message())
	return err
}

// ExitCode is 0 for a valid script and 1 for everything else.
func (o Outcome) ExitCode() int {
	if o.Kind == Valid {
		return 0
	}
	return 1
}

// Parser is the parsing capability the validator delegates to.
// *taggerscript.Parser satisfies it.
type Parser interface {
	ParseString(text string) (*taggerscript.Script, error)
}

// Validator reads and parses script files.
type Validator struct {
	fs     afero.Fs
	parser Parser
	logger *zap.Logger
}

// Option configures a Validator
type Option func(v *Validator)

// WithFs sets the filesystem scripts are read from. The default is the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(v *Validator) {
		v.fs = fsys
	}
}

// WithParser sets the parser. The default is taggerscript.NewParser().
func WithParser(p Parser) Option {
	return func(v *Validator) {
		v.parser = p
	}
}

// WithLogger sets the diagnostics logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New returns a Validator with the given options applied.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		fs:     afero.NewOsFs(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.parser == nil {
		p, err := taggerscript.NewParser()
		if err != nil {
			return nil, errors.Wrap(err, "create default parser")
		}
		v.parser = p
	}
	return v, nil
}

// Validate reads the file at path and parses it. It never panics.
func (v *Validator) Validate(path string) Outcome {
	log := v.logger.With(zap.String("path", path))

	data, err := afero.ReadFile(v.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("script not found", zap.Error(err))
			return Outcome{Kind: FileNotFound, Path: path, Err: err}
		}
		log.Debug("script unreadable", zap.Error(err))
		return Outcome{Kind: FileUnreadable, Path: path, Detail: err.Error(), Err: err}
	}
	log.Debug("read script", zap.Int("bytes", len(data)))

	if offset, ok := invalidUTF8(data); ok {
		err := errors.Errorf("invalid UTF-8 sequence at byte offset %d", offset)
		log.Debug("script is not text", zap.Error(err))
		return Outcome{Kind: NotText, Path: path, Detail: err.Error(), Err: err}
	}

	script, err := v.parse(string(data))
	if err != nil {
		var syntaxErr *taggerscript.SyntaxError
		if errors.As(err, &syntaxErr) {
			log.Debug("syntax error", zap.Error(err))
			return Outcome{Kind: SyntaxError, Path: path, Detail: syntaxErr.Error(), Err: err}
		}
		log.Warn("parser failed", zap.Error(err))
		return Outcome{Kind: InternalError, Path: path, Detail: err.Error(), Err: err}
	}

	sum := taggerscript.Summarize(script)
	log.Debug("script is valid",
		zap.Int("functions", sum.Functions),
		zap.Int("variables", sum.Variables),
		zap.Int("texts", sum.Texts),
		zap.Int("escapes", sum.Escapes),
	)
	return Outcome{Kind: Valid, Path: path}
}

// parse runs the parser, turning a panic into an error.
func (v *Validator) parse(text string) (script *taggerscript.Script, err error) {
	defer func() {
		if r := recover(); r != nil {
			script = nil
			err = errors.Errorf("parser panic: %v", r)
		}
	}()
	script, err = v.parser.ParseString(text)
	if err == nil && script == nil {
		err = errors.New("parser returned no script")
	}
	return script, err
}

// invalidUTF8 returns the offset of the first byte that does not start a
// valid UTF-8 sequence.
func invalidUTF8(data []byte) (int, bool) {
	if utf8.Valid(data) {
		return 0, false
	}
	for offset := 0; offset < len(data); {
		r, width := utf8.DecodeRune(data[offset:])
		if r == utf8.RuneError && width == 1 {
			return offset, true
		}
		offset += width
	}
	return len(data), true
}
