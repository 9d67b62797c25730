// Package config loads the optional HCL file that declares extra
// TaggerScript functions and parser options.
//
// A configuration file looks like:
//
//	allow_unknown_functions = false
//
//	function "plugin_func" {
//	  min_args = 1
//	  max_args = 2
//	}
//
// Omitting min_args means 0, omitting max_args means no upper bound.
package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"

	"github.com/OpenTraceLab/validate-tagger/pkg/taggerscript"
)

// Config holds the parser settings read from a configuration file.
type Config struct {
	AllowUnknownFunctions bool
	Functions             []Function
}

// Function is a function declared in the configuration file.
type Function struct {
	Name string
	Min  int
	Max  int // taggerscript.Unbounded if there is no upper bound
}

// hclConfigFile represents the top-level structure of a configuration file for decoding.
type hclConfigFile struct {
	AllowUnknownFunctions *bool          `hcl:"allow_unknown_functions,optional"`
	Functions             []*hclFunction `hcl:"function,block"`
}

type hclFunction struct {
	Name    string `hcl:"name,label"`
	MinArgs *int   `hcl:"min_args,optional"`
	MaxArgs *int   `hcl:"max_args,optional"`
}

// Load reads and parses the configuration file at path.
func Load(fs afero.Fs, path string) (*Config, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse parses configuration source. filename is only used in error messages.
func Parse(src []byte, filename string) (*Config, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}

	var parsedFile hclConfigFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsedFile)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}

	cfg := &Config{}
	if parsedFile.AllowUnknownFunctions != nil {
		cfg.AllowUnknownFunctions = *parsedFile.AllowUnknownFunctions
	}

	seen := make(map[string]bool, len(parsedFile.Functions))
	for _, fn := range parsedFile.Functions {
		if seen[fn.Name] {
			return nil, fmt.Errorf("config file %s: function %q declared more than once", filename, fn.Name)
		}
		seen[fn.Name] = true

		decl := Function{Name: fn.Name, Min: 0, Max: taggerscript.Unbounded}
		if fn.MinArgs != nil {
			decl.Min = *fn.MinArgs
		}
		if fn.MaxArgs != nil {
			decl.Max = *fn.MaxArgs
		}
		cfg.Functions = append(cfg.Functions, decl)
	}

	return cfg, nil
}

// Apply registers the declared functions in reg.
func (c *Config) Apply(reg *taggerscript.Registry) error {
	for _, fn := range c.Functions {
		if err := reg.Register(fn.Name, fn.Min, fn.Max); err != nil {
			return fmt.Errorf("invalid function declaration: %w", err)
		}
	}
	return nil
}
