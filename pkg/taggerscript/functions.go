package taggerscript

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Unbounded marks an Arity without an upper limit
const Unbounded = -1

// Arity is the range of argument counts a function accepts
type Arity struct {
	Min int
	Max int // Unbounded for variadic functions
}

// Accepts reports whether n arguments are allowed
func (a Arity) Accepts(n int) bool {
	if n < a.Min {
		return false
	}
	return a.Max == Unbounded || n <= a.Max
}

// Expected describes the allowed argument counts,
// e.g. "exactly 2", "at least 1" or "between 2 and 3"
func (a Arity) Expected() string {
	switch {
	case a.Max == Unbounded:
		return fmt.Sprintf("at least %d", a.Min)
	case a.Min == a.Max:
		return fmt.Sprintf("exactly %d", a.Min)
	default:
		return fmt.Sprintf("between %d and %d", a.Min, a.Max)
	}
}

// Registry holds the functions a parser accepts
type Registry struct {
	funcs map[string]Arity
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Arity)}
}

// DefaultRegistry creates a registry holding the built-in functions
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for name, arity := range builtins {
		r.funcs[name] = arity
	}
	return r
}

// Register adds a function, replacing any previous definition of the same name
func (r *Registry) Register(name string, min, max int) error {
	if name == "" {
		return fmt.Errorf("function name is empty")
	}
	for _, ch := range name {
		if !isIdentRune(ch) {
			return fmt.Errorf("invalid function name %q: unexpected character %q", name, ch)
		}
	}
	if min < 0 {
		return fmt.Errorf("function %s: minimum argument count %d is negative", name, min)
	}
	if max != Unbounded && max < min {
		return fmt.Errorf("function %s: maximum argument count %d is less than minimum %d", name, max, min)
	}
	r.funcs[name] = Arity{Min: min, Max: max}
	return nil
}

// Lookup returns the arity of a registered function
func (r *Registry) Lookup(name string) (Arity, bool) {
	arity, ok := r.funcs[name]
	return arity, ok
}

// Names returns the registered function names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered functions
func (r *Registry) Len() int {
	return len(r.funcs)
}

// ParseFunctionSpec parses a function declaration of the form
// "name", "name:min" or "name:min:max", where max may be "*" for a
// variadic function. A bare name accepts any number of arguments.
func ParseFunctionSpec(spec string) (string, Arity, error) {
	fields := strings.Split(spec, ":")
	if len(fields) > 3 {
		return "", Arity{}, fmt.Errorf("invalid function spec %q: expected name[:min[:max]]", spec)
	}

	name := strings.TrimPrefix(strings.TrimSpace(fields[0]), "$")
	if name == "" {
		return "", Arity{}, fmt.Errorf("invalid function spec %q: missing name", spec)
	}

	arity := Arity{Min: 0, Max: Unbounded}
	if len(fields) >= 2 {
		min, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return "", Arity{}, fmt.Errorf("invalid function spec %q: bad minimum: %w", spec, err)
		}
		arity.Min = min
	}
	if len(fields) == 3 {
		if max := strings.TrimSpace(fields[2]); max != "*" {
			n, err := strconv.Atoi(max)
			if err != nil {
				return "", Arity{}, fmt.Errorf("invalid function spec %q: bad maximum: %w", spec, err)
			}
			arity.Max = n
		}
	}
	return name, arity, nil
}

// builtins lists Picard's script functions and their argument bounds
var builtins = map[string]Arity{
	// control flow
	"if":    {2, 3},
	"if2":   {1, Unbounded},
	"noop":  {0, Unbounded},
	"while": {2, 2},

	// text
	"left":           {2, 2},
	"right":          {2, 2},
	"lower":          {1, 1},
	"upper":          {1, 1},
	"title":          {1, 1},
	"pad":            {3, 3},
	"strip":          {1, 1},
	"trim":           {1, 2},
	"replace":        {3, 3},
	"rreplace":       {3, 3},
	"rsearch":        {2, 2},
	"num":            {2, 2},
	"len":            {1, 1},
	"in":             {2, 2},
	"find":           {2, 2},
	"reverse":        {1, 1},
	"substr":         {3, 3},
	"startswith":     {2, 2},
	"endswith":       {2, 2},
	"truncate":       {2, 2},
	"firstwords":     {2, 2},
	"firstalphachar": {0, 2},
	"initials":       {0, 1},
	"swapprefix":     {1, Unbounded},
	"delprefix":      {1, Unbounded},

	// variables
	"set":       {2, 2},
	"setmulti":  {2, 3},
	"get":       {1, 1},
	"unset":     {1, 1},
	"delete":    {1, 1},
	"copy":      {2, 2},
	"copymerge": {2, 3},

	// multi-value
	"inmulti":      {2, 3},
	"lenmulti":     {1, 2},
	"getmulti":     {2, 3},
	"foreach":      {2, 3},
	"map":          {2, 3},
	"join":         {2, 3},
	"slice":        {2, 4},
	"sortmulti":    {1, 2},
	"reversemulti": {1, 2},
	"unique":       {1, 3},
	"is_multi":     {1, 1},
	"cleanmulti":   {1, 1},
	"replacemulti": {3, 4},

	// arithmetic
	"add": {2, Unbounded},
	"sub": {2, Unbounded},
	"mul": {2, Unbounded},
	"div": {2, Unbounded},
	"mod": {2, Unbounded},
	"min": {2, Unbounded},
	"max": {2, Unbounded},

	// logic and comparison
	"or":     {2, Unbounded},
	"and":    {2, Unbounded},
	"not":    {1, 1},
	"eq":     {2, 2},
	"ne":     {2, 2},
	"lt":     {2, 3},
	"lte":    {2, 3},
	"gt":     {2, 3},
	"gte":    {2, 3},
	"eq_any": {1, Unbounded},
	"ne_all": {1, Unbounded},
	"eq_all": {1, Unbounded},
	"ne_any": {1, Unbounded},

	// dates
	"datetime":   {0, 1},
	"year":       {1, 2},
	"month":      {1, 2},
	"day":        {1, 2},
	"dateformat": {1, 3},

	// release and track information
	"performer":     {0, 2},
	"matchedtracks": {0, Unbounded},
	"is_complete":   {0, 0},
	"is_audio":      {0, 0},
	"is_video":      {0, 0},
	"countryname":   {1, 2},
}
