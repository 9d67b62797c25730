package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/validate-tagger/internal/version"
)

func findTestdata(t *testing.T) string {
	t.Helper()
	testdata := "../../testdata"
	if _, err := os.Stat(testdata); os.IsNotExist(err) {
		testdata = "../../../testdata"
	}
	return testdata
}

// TestValidateE2E runs the command end-to-end against the files in testdata
func TestValidateE2E(t *testing.T) {
	testdata := findTestdata(t)
	missing := filepath.Join(testdata, "missing.pts")

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{
			name:     "valid script",
			args:     []string{filepath.Join(testdata, "valid.pts")},
			wantCode: 0,
			wantOut:  "✅ TaggerScript syntax is valid.\n",
		},
		{
			name:     "unbalanced parenthesis",
			args:     []string{filepath.Join(testdata, "unbalanced.pts")},
			wantCode: 1,
			wantOut:  "❌ TaggerScript syntax error:\n1:15: Unexpected end of script\n",
		},
		{
			name:     "multiline naming script",
			args:     []string{filepath.Join(testdata, "rename.pts")},
			wantCode: 0,
			wantOut:  "✅ TaggerScript syntax is valid.\n",
		},
		{
			name:     "wrong argument count",
			args:     []string{filepath.Join(testdata, "arity.pts")},
			wantCode: 1,
			wantOut:  "❌ TaggerScript syntax error:\n2:8: Wrong number of arguments for $upper: Expected exactly 1, got 2\n",
		},
		{
			name:     "unknown plugin function",
			args:     []string{filepath.Join(testdata, "plugin.pts")},
			wantCode: 1,
			wantOut:  "❌ TaggerScript syntax error:\n1:8: Unknown function 'plugin_func'\n",
		},
		{
			name:     "plugin function from flag",
			args:     []string{"--function", "plugin_func:1:2", filepath.Join(testdata, "plugin.pts")},
			wantCode: 0,
			wantOut:  "✅ TaggerScript syntax is valid.\n",
		},
		{
			name:     "plugin function with too few arguments allowed by flag",
			args:     []string{"--function", "plugin_func:3", filepath.Join(testdata, "plugin.pts")},
			wantCode: 1,
			wantOut:  "❌ TaggerScript syntax error:\n1:8: Wrong number of arguments for $plugin_func: Expected at least 3, got 2\n",
		},
		{
			name:     "plugin function from config",
			args:     []string{"-c", filepath.Join(testdata, "plugins.hcl"), filepath.Join(testdata, "plugin.pts")},
			wantCode: 0,
			wantOut:  "✅ TaggerScript syntax is valid.\n",
		},
		{
			name:     "unknown functions allowed",
			args:     []string{"--allow-unknown-functions", filepath.Join(testdata, "plugin.pts")},
			wantCode: 0,
			wantOut:  "✅ TaggerScript syntax is valid.\n",
		},
		{
			name:     "missing file",
			args:     []string{missing},
			wantCode: 1,
			wantOut:  "❌ ERROR: File '" + missing + "' not found\n",
		},
		{
			name:     "no arguments",
			args:     []string{},
			wantCode: 1,
			wantOut:  "Usage: validate_tagger.py <script.pts>\n",
		},
		{
			name:     "extra arguments ignored",
			args:     []string{filepath.Join(testdata, "valid.pts"), filepath.Join(testdata, "unbalanced.pts")},
			wantCode: 0,
			wantOut:  "✅ TaggerScript syntax is valid.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := Run(&stdout, &stderr, tt.args)

			assert.Equal(t, tt.wantCode, code, "stderr: %s", stderr.String())
			assert.Equal(t, tt.wantOut, stdout.String())
		})
	}
}

func TestValidateE2EIdempotent(t *testing.T) {
	path := filepath.Join(findTestdata(t), "unbalanced.pts")

	var first, second bytes.Buffer
	code1 := Run(&first, &bytes.Buffer{}, []string{path})
	code2 := Run(&second, &bytes.Buffer{}, []string{path})

	assert.Equal(t, code1, code2)
	assert.Equal(t, first.String(), second.String())
}

func TestExtraArgumentsWarning(t *testing.T) {
	testdata := findTestdata(t)

	var stdout, stderr bytes.Buffer
	Run(&stdout, &stderr, []string{filepath.Join(testdata, "valid.pts"), "other.pts"})

	assert.Contains(t, stderr.String(), "extra arguments ignored")
	assert.Contains(t, stderr.String(), "other.pts")
}

func TestVerboseLogging(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.pts", []byte("$upper(%title%)"), 0o644))

	var stdout, stderr bytes.Buffer
	code := runWithFs(fs, &stdout, &stderr, []string{"-v", "/a.pts"})

	assert.Equal(t, 0, code)
	assert.Equal(t, "✅ TaggerScript syntax is valid.\n", stdout.String())
	assert.Contains(t, stderr.String(), "validation finished")

	stderr.Reset()
	stdout.Reset()
	runWithFs(fs, &stdout, &stderr, []string{"/a.pts"})
	assert.Empty(t, stderr.String())
}

func TestVersionFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(&stdout, &stderr, []string{"--version"})

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), version.Version().String())
}

func TestConfigErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.pts", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/bad.hcl", []byte(`function "f" {`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/dup.hcl", []byte("function \"f\" {}\nfunction \"f\" {}\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing config", []string{"-c", "/none.hcl", "/a.pts"}, "failed to read config file /none.hcl"},
		{"malformed config", []string{"-c", "/bad.hcl", "/a.pts"}, "failed to parse config file /bad.hcl"},
		{"duplicate function", []string{"-c", "/dup.hcl", "/a.pts"}, "declared more than once"},
		{"bad function flag", []string{"--function", "f:x", "/a.pts"}, "--function"},
		{"missing flag value", []string{"/a.pts", "--config"}, "flag needs an argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := runWithFs(fs, &stdout, &stderr, tt.args)

			assert.Equal(t, 1, code)
			assert.Empty(t, stdout.String())
			assert.Contains(t, stderr.String(), tt.want)
		})
	}
}

func TestDashPrefixedPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "-x.pts", []byte("$upper(%title%)"), 0o644))

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"missing file", []string{"-nofile.pts"}, 1, "❌ ERROR: File '-nofile.pts' not found\n"},
		{"missing long form", []string{"--nofile.pts"}, 1, "❌ ERROR: File '--nofile.pts' not found\n"},
		{"missing after separator", []string{"--", "-missing.pts"}, 1, "❌ ERROR: File '-missing.pts' not found\n"},
		{"existing file", []string{"-x.pts"}, 0, "✅ TaggerScript syntax is valid.\n"},
		{"existing file after flags", []string{"-v", "--function", "f:1", "-x.pts"}, 0, "✅ TaggerScript syntax is valid.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := runWithFs(fs, &stdout, &stderr, tt.args)

			assert.Equal(t, tt.wantCode, code, "stderr: %s", stderr.String())
			assert.Equal(t, tt.wantOut, stdout.String())
		})
	}
}
