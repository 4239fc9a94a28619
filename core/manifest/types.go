package manifest

import (
	"path"
	"path/filepath"
	"strings"

	coreerrors "github.com/davidahmann/probkit/core/errors"
)

// Manifest is the decoded problem_config.json of a problem package. Field order
// here is the serialized field order.
type Manifest struct {
	Title     string       `json:"title"`
	Time      float64      `json:"time"`
	Tags      []string     `json:"tags"`
	Testcases []Testcase   `json:"testcases"`
	Sources   []SourceFile `json:"sources"`
	Solutions []Solution   `json:"solutions"`
	Validator *int         `json:"validator"`
	Checker   *int         `json:"checker"`
}

// SourceFile is a registered source with a structured build description.
// Source and Bin are slash paths relative to the package root.
type SourceFile struct {
	Source       string   `json:"source"`
	Compiler     string   `json:"compiler"`
	CompilerArgs []string `json:"compiler_args"`
	Bin          string   `json:"bin"`
	BinArgs      []string `json:"bin_args"`
}

// Solution is a registered reference solution and its expected verdict.
type Solution struct {
	SourceFile SourceFile `json:"sourcefile"`
	Verdict    Verdict    `json:"verdict"`
}

// Testcase pairs an input file with its expected output.
// Generate marks inputs meant to be produced by a generator.
type Testcase struct {
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	Generate   bool   `json:"generate"`
	Sample     bool   `json:"sample"`
}

// Toolchain describes how sources of one extension are built.
type Toolchain struct {
	Compiler     string
	CompilerArgs []string
	BinArgs      []string
}

// Toolchains maps a file extension without the leading dot to its toolchain.
type Toolchains map[string]Toolchain

// DefaultToolchains builds .cpp sources with g++.
func DefaultToolchains() Toolchains {
	return Toolchains{
		"cpp": {
			Compiler:     "g++",
			CompilerArgs: []string{"-O2", "-std=c++17"},
			BinArgs:      []string{},
		},
	}
}

// New returns a manifest with empty collections and no references.
func New(title string, timeLimit float64, tags []string) Manifest {
	m := Manifest{
		Title: title,
		Time:  timeLimit,
		Tags:  append([]string{}, tags...),
	}
	m.normalize()
	return m
}

// NewSourceFile derives the build description of source from its extension.
// Extensions without a toolchain get an empty description and no bin path.
func NewSourceFile(source, bin string, toolchains Toolchains) SourceFile {
	sourceFile := SourceFile{
		Source:       filepath.ToSlash(source),
		CompilerArgs: []string{},
		BinArgs:      []string{},
	}
	extension := strings.TrimPrefix(path.Ext(sourceFile.Source), ".")
	toolchain, ok := toolchains[extension]
	if !ok || extension == "" {
		return sourceFile
	}
	sourceFile.Compiler = toolchain.Compiler
	sourceFile.CompilerArgs = append([]string{}, toolchain.CompilerArgs...)
	sourceFile.Bin = filepath.ToSlash(bin)
	sourceFile.BinArgs = append([]string{}, toolchain.BinArgs...)
	return sourceFile
}

// Name is the base filename, the identity of an entry within its collection.
func (s SourceFile) Name() string {
	return path.Base(filepath.ToSlash(s.Source))
}

// Name is the base filename of the input file.
func (t Testcase) Name() string {
	return path.Base(filepath.ToSlash(t.InputPath))
}

// SourceIndex returns the index of the first source named name, or -1.
func (m Manifest) SourceIndex(name string) int {
	for index, source := range m.Sources {
		if source.Name() == name {
			return index
		}
	}
	return -1
}

// SolutionIndex returns the index of the first solution named name, or -1.
func (m Manifest) SolutionIndex(name string) int {
	for index, solution := range m.Solutions {
		if solution.SourceFile.Name() == name {
			return index
		}
	}
	return -1
}

// TestcaseIndex returns the index of the first testcase named name, or -1.
func (m Manifest) TestcaseIndex(name string) int {
	for index, testcase := range m.Testcases {
		if testcase.Name() == name {
			return index
		}
	}
	return -1
}

// FindSource returns the first source whose base filename is name.
func (m Manifest) FindSource(name string) (SourceFile, bool) {
	index := m.SourceIndex(name)
	if index < 0 {
		return SourceFile{}, false
	}
	return m.Sources[index], true
}

// FindSolution returns the first solution whose base filename is name.
func (m Manifest) FindSolution(name string) (Solution, bool) {
	index := m.SolutionIndex(name)
	if index < 0 {
		return Solution{}, false
	}
	return m.Solutions[index], true
}

// SourceNames lists source names in manifest order.
func (m Manifest) SourceNames() []string {
	names := make([]string, 0, len(m.Sources))
	for _, source := range m.Sources {
		names = append(names, source.Name())
	}
	return names
}

// SolutionNames lists solution names in manifest order.
func (m Manifest) SolutionNames() []string {
	names := make([]string, 0, len(m.Solutions))
	for _, solution := range m.Solutions {
		names = append(names, solution.SourceFile.Name())
	}
	return names
}

// TestcaseNames lists testcase names in manifest order.
func (m Manifest) TestcaseNames() []string {
	names := make([]string, 0, len(m.Testcases))
	for _, testcase := range m.Testcases {
		names = append(names, testcase.Name())
	}
	return names
}

// ValidatorSource resolves the validator reference.
func (m Manifest) ValidatorSource() (SourceFile, bool) {
	return m.resolve(m.Validator)
}

// CheckerSource resolves the checker reference.
func (m Manifest) CheckerSource() (SourceFile, bool) {
	return m.resolve(m.Checker)
}

func (m Manifest) resolve(reference *int) (SourceFile, bool) {
	if reference == nil || *reference < 0 || *reference >= len(m.Sources) {
		return SourceFile{}, false
	}
	return m.Sources[*reference], true
}

// RemoveSourceAt deletes the source at index and shifts the validator and
// checker references that point past it. Removing a referenced source is refused.
func (m *Manifest) RemoveSourceAt(index int) (SourceFile, error) {
	if index < 0 || index >= len(m.Sources) {
		return SourceFile{}, coreerrors.New(coreerrors.ErrNotFound, "source index %d out of range", index)
	}
	removed := m.Sources[index]
	if m.Validator != nil && *m.Validator == index {
		return SourceFile{}, coreerrors.New(coreerrors.ErrReferenceInUse, "source %q is the validator", removed.Name())
	}
	if m.Checker != nil && *m.Checker == index {
		return SourceFile{}, coreerrors.New(coreerrors.ErrReferenceInUse, "source %q is the checker", removed.Name())
	}
	m.Sources = append(m.Sources[:index], m.Sources[index+1:]...)
	m.Validator = shiftReference(m.Validator, index)
	m.Checker = shiftReference(m.Checker, index)
	return removed, nil
}

func shiftReference(reference *int, removed int) *int {
	if reference == nil || *reference < removed {
		return reference
	}
	shifted := *reference - 1
	return &shifted
}

// normalize replaces nil collections with empty ones so they encode as [].
func (m *Manifest) normalize() {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.Testcases == nil {
		m.Testcases = []Testcase{}
	}
	if m.Sources == nil {
		m.Sources = []SourceFile{}
	}
	if m.Solutions == nil {
		m.Solutions = []Solution{}
	}
	for index := range m.Sources {
		m.Sources[index].normalize()
	}
	for index := range m.Solutions {
		m.Solutions[index].SourceFile.normalize()
		if m.Solutions[index].Verdict == "" {
			m.Solutions[index].Verdict = VerdictAccepted
		}
	}
}

func (s *SourceFile) normalize() {
	if s.CompilerArgs == nil {
		s.CompilerArgs = []string{}
	}
	if s.BinArgs == nil {
		s.BinArgs = []string{}
	}
}
