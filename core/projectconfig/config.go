package projectconfig

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/manifest"
)

const DefaultPath = "probkit.yaml"

type Config struct {
	Problem  ProblemDefaults  `yaml:"problem"`
	Solution SolutionDefaults `yaml:"solution"`
	Build    BuildDefaults    `yaml:"build"`
}

type ProblemDefaults struct {
	TimeLimit float64  `yaml:"time_limit"`
	Tags      []string `yaml:"tags"`
}

type SolutionDefaults struct {
	DefaultVerdict string `yaml:"default_verdict"`
}

type BuildDefaults struct {
	Cpp ToolchainDefaults `yaml:"cpp"`
}

type ToolchainDefaults struct {
	Compiler     string   `yaml:"compiler"`
	CompilerArgs []string `yaml:"compiler_args"`
	BinArgs      []string `yaml:"bin_args"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cpp := manifest.DefaultToolchains()["cpp"]
	return Config{
		Problem: ProblemDefaults{
			TimeLimit: 1.0,
			Tags:      []string{},
		},
		Solution: SolutionDefaults{
			DefaultVerdict: string(manifest.VerdictAccepted),
		},
		Build: BuildDefaults{
			Cpp: ToolchainDefaults{
				Compiler:     cpp.Compiler,
				CompilerArgs: append([]string{}, cpp.CompilerArgs...),
				BinArgs:      append([]string{}, cpp.BinArgs...),
			},
		},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value.
func Load(path string, allowMissing bool) (Config, error) {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return Config{}, coreerrors.New(coreerrors.ErrInvalidValue, "project config path is required")
	}

	// #nosec G304 -- project config path is explicit local user input.
	content, err := os.ReadFile(trimmedPath)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return Default(), nil
		}
		return Config{}, coreerrors.Wrap(fmt.Errorf("read project config: %w", err), coreerrors.CategoryIOFailure, "config_unreadable", "check the --config path", false)
	}
	configuration := Default()
	if len(strings.TrimSpace(string(content))) == 0 {
		return configuration, nil
	}

	if err := yaml.Unmarshal(content, &configuration); err != nil {
		return Config{}, coreerrors.Mark(coreerrors.ErrInvalidValue, err, "parse project config %s", trimmedPath)
	}
	configuration.normalize()
	if err := configuration.validate(); err != nil {
		return Config{}, err
	}
	configuration.Solution.DefaultVerdict = configuration.Verdict().String()
	return configuration, nil
}

func (configuration *Config) normalize() {
	configuration.Problem.Tags = trimAll(configuration.Problem.Tags)
	configuration.Solution.DefaultVerdict = strings.ToUpper(strings.TrimSpace(configuration.Solution.DefaultVerdict))
	if configuration.Solution.DefaultVerdict == "" {
		configuration.Solution.DefaultVerdict = string(manifest.VerdictAccepted)
	}
	configuration.Build.Cpp.Compiler = strings.TrimSpace(configuration.Build.Cpp.Compiler)
	configuration.Build.Cpp.CompilerArgs = trimAll(configuration.Build.Cpp.CompilerArgs)
	configuration.Build.Cpp.BinArgs = trimAll(configuration.Build.Cpp.BinArgs)
}

func (configuration Config) validate() error {
	timeLimit := configuration.Problem.TimeLimit
	if math.IsNaN(timeLimit) || math.IsInf(timeLimit, 0) || timeLimit <= 0 {
		return coreerrors.New(coreerrors.ErrInvalidValue, "problem.time_limit must be positive, got %v", timeLimit)
	}
	if _, err := manifest.ParseVerdict(configuration.Solution.DefaultVerdict); err != nil {
		return coreerrors.Mark(coreerrors.ErrInvalidValue, err, "solution.default_verdict")
	}
	if configuration.Build.Cpp.Compiler == "" {
		return coreerrors.New(coreerrors.ErrInvalidValue, "build.cpp.compiler must not be empty")
	}
	return nil
}

// Verdict is the parsed solution.default_verdict.
func (configuration Config) Verdict() manifest.Verdict {
	verdict, err := manifest.ParseVerdict(configuration.Solution.DefaultVerdict)
	if err != nil {
		return manifest.VerdictAccepted
	}
	return verdict
}

// Toolchains builds the registrar toolchain table from the build section.
func (configuration Config) Toolchains() manifest.Toolchains {
	return manifest.Toolchains{
		"cpp": {
			Compiler:     configuration.Build.Cpp.Compiler,
			CompilerArgs: append([]string{}, configuration.Build.Cpp.CompilerArgs...),
			BinArgs:      append([]string{}, configuration.Build.Cpp.BinArgs...),
		},
	}
}

func trimAll(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		trimmed = append(trimmed, value)
	}
	return trimmed
}
