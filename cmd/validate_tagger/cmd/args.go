package cmd

import (
	"strings"

	"github.com/spf13/pflag"
)

// separateScriptPath inserts "--" in front of the first argument that looks
// like a flag but is not one, so a script named "-x.pts" is validated
// instead of rejected as an unknown flag. Arguments that are already
// positional, or come after "--", are left alone.
func separateScriptPath(flags *pflag.FlagSet, args []string) []string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return args
		}
		if len(arg) < 2 || arg[0] != '-' {
			continue
		}

		known, takesValue := lookupFlag(flags, arg)
		if !known {
			out := make([]string, 0, len(args)+1)
			out = append(out, args[:i]...)
			out = append(out, "--")
			return append(out, args[i:]...)
		}
		if takesValue {
			i++ // skip the flag's value
		}
	}
	return args
}

// lookupFlag reports whether arg names flags in the set, and whether the
// last of them takes its value from the next argument.
func lookupFlag(flags *pflag.FlagSet, arg string) (known, takesValue bool) {
	if strings.HasPrefix(arg, "--") {
		name, _, inline := strings.Cut(arg[2:], "=")
		f := flags.Lookup(name)
		if f == nil {
			return false, false
		}
		return true, !inline && f.NoOptDefVal == ""
	}

	// shorthands may be combined, as in "-vc tagger.hcl"
	shorthands := arg[1:]
	for i := 0; i < len(shorthands); i++ {
		ch := shorthands[i]
		if ch >= 0x80 {
			return false, false
		}
		f := flags.ShorthandLookup(string(ch))
		if f == nil {
			return false, false
		}
		if f.NoOptDefVal == "" {
			// the rest of the argument, if any, is the value
			return true, i == len(shorthands)-1
		}
	}
	return true, false
}
