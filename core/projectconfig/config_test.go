package projectconfig

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/manifest"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAllowMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	configuration, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load allow missing: %v", err)
	}
	if !reflect.DeepEqual(configuration, Default()) {
		t.Fatalf("expected defaults, got %#v", configuration)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := Load(path, false)
	if err == nil {
		t.Fatal("expected missing required config error")
	}
	if coreerrors.CategoryOf(err) != coreerrors.CategoryIOFailure {
		t.Fatalf("expected io_failure, got %s", coreerrors.CategoryOf(err))
	}
}

func TestDefaults(t *testing.T) {
	configuration := Default()
	if configuration.Problem.TimeLimit != 1.0 {
		t.Fatalf("unexpected time limit %v", configuration.Problem.TimeLimit)
	}
	if configuration.Verdict() != manifest.VerdictAccepted {
		t.Fatalf("unexpected verdict %s", configuration.Verdict())
	}
	if !reflect.DeepEqual(configuration.Toolchains(), manifest.DefaultToolchains()) {
		t.Fatalf("unexpected toolchains %#v", configuration.Toolchains())
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	configuration, err := Load(writeConfig(t, "  \n"), false)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if !reflect.DeepEqual(configuration, Default()) {
		t.Fatalf("expected defaults, got %#v", configuration)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
problem:
  time_limit: 2.5
  tags: [" math ", "", "greedy"]
solution:
  default_verdict: " tle "
build:
  cpp:
    compiler: " clang++ "
    compiler_args: [" -O3 ", "-std=c++20"]
`)

	configuration, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load parse: %v", err)
	}
	if configuration.Problem.TimeLimit != 2.5 {
		t.Fatalf("unexpected time_limit %v", configuration.Problem.TimeLimit)
	}
	if !reflect.DeepEqual(configuration.Problem.Tags, []string{"math", "greedy"}) {
		t.Fatalf("unexpected tags %#v", configuration.Problem.Tags)
	}
	if configuration.Solution.DefaultVerdict != "TLE" || configuration.Verdict() != manifest.VerdictTimeLimitExceeded {
		t.Fatalf("unexpected default_verdict %q", configuration.Solution.DefaultVerdict)
	}
	cpp := configuration.Toolchains()["cpp"]
	if cpp.Compiler != "clang++" {
		t.Fatalf("unexpected compiler %q", cpp.Compiler)
	}
	if !reflect.DeepEqual(cpp.CompilerArgs, []string{"-O3", "-std=c++20"}) {
		t.Fatalf("unexpected compiler_args %#v", cpp.CompilerArgs)
	}
	if len(cpp.BinArgs) != 0 || cpp.BinArgs == nil {
		t.Fatalf("expected empty bin_args, got %#v", cpp.BinArgs)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"invalid yaml":     "problem: [\n",
		"zero time limit":  "problem:\n  time_limit: 0\n",
		"unknown verdict":  "solution:\n  default_verdict: RE\n",
		"missing compiler": "build:\n  cpp:\n    compiler: \"  \"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content), false)
			if !errors.Is(err, coreerrors.ErrInvalidValue) {
				t.Fatalf("expected invalid value error, got %v", err)
			}
		})
	}
}
