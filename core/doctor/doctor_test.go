package doctor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davidahmann/probkit/core/layout"
	"github.com/davidahmann/probkit/core/registry"
	"github.com/davidahmann/probkit/internal/testutil"
)

func TestRunPassesOnFreshPackage(t *testing.T) {
	root := testutil.NewPackage(t)
	r := registry.New(root, registry.Options{})
	if _, err := r.AddSource("val.cpp", ""); err != nil {
		t.Fatalf("add source: %v", err)
	}
	if _, err := r.SetValidator("val.cpp"); err != nil {
		t.Fatalf("set validator: %v", err)
	}
	if _, err := r.AddTestcase(registry.TestcaseOptions{Name: "01"}); err != nil {
		t.Fatalf("add testcase: %v", err)
	}

	result := Run(Options{Root: root, ProducerVersion: "test"})

	if result.Status != statusPass {
		t.Fatalf("expected pass, got %s: %#v", result.Status, result.Checks)
	}
	if len(result.Checks) != 7 {
		t.Fatalf("expected 7 checks, got %d", len(result.Checks))
	}
	if len(result.FixCommands) != 0 {
		t.Fatalf("expected no fix commands, got %v", result.FixCommands)
	}
	if result.Failed() {
		t.Fatal("expected Failed() false")
	}
}

func TestRunFailsOnMissingRegisteredFile(t *testing.T) {
	root := testutil.NewPackage(t)
	r := registry.New(root, registry.Options{})
	if _, err := r.AddSolution("main.cpp", "", ""); err != nil {
		t.Fatalf("add solution: %v", err)
	}
	if err := os.Remove(layout.Abs(root, "src/solutions/main.cpp")); err != nil {
		t.Fatalf("remove solution file: %v", err)
	}

	result := Run(Options{Root: root})

	if !result.Failed() {
		t.Fatalf("expected fail, got %s", result.Status)
	}
	check := findCheck(t, result.Checks, "registered_files")
	if check.Status != statusFail || !strings.Contains(check.Message, "src/solutions/main.cpp") {
		t.Fatalf("unexpected check: %#v", check)
	}
	if check.FixCommand != "probkit remove solution main.cpp" {
		t.Fatalf("unexpected fix command %q", check.FixCommand)
	}
}

func TestRunFailsOnMissingValidatorFile(t *testing.T) {
	root := testutil.NewPackage(t)
	r := registry.New(root, registry.Options{})
	if _, err := r.AddSource("val.cpp", ""); err != nil {
		t.Fatalf("add source: %v", err)
	}
	if _, err := r.SetValidator("val.cpp"); err != nil {
		t.Fatalf("set validator: %v", err)
	}
	if err := os.Remove(layout.Abs(root, "src/sources/val.cpp")); err != nil {
		t.Fatalf("remove validator file: %v", err)
	}

	result := Run(Options{Root: root})

	check := findCheck(t, result.Checks, "references")
	if check.Status != statusFail || !strings.Contains(check.Message, "validator") {
		t.Fatalf("unexpected references check: %#v", check)
	}
	if check.FixCommand != "probkit set validator --clear" {
		t.Fatalf("unexpected references fix command %q", check.FixCommand)
	}
	files := findCheck(t, result.Checks, "registered_files")
	if files.FixCommand != "probkit set validator --clear && probkit remove source val.cpp" {
		t.Fatalf("unexpected registered files fix command %q", files.FixCommand)
	}
}

func TestRunClearsBothReferencesBeforeRemovingSource(t *testing.T) {
	root := testutil.NewPackage(t)
	r := registry.New(root, registry.Options{})
	if _, err := r.AddSource("judge.cpp", ""); err != nil {
		t.Fatalf("add source: %v", err)
	}
	if _, err := r.SetValidator("judge.cpp"); err != nil {
		t.Fatalf("set validator: %v", err)
	}
	if _, err := r.SetChecker("judge.cpp"); err != nil {
		t.Fatalf("set checker: %v", err)
	}
	if err := os.Remove(layout.Abs(root, "src/sources/judge.cpp")); err != nil {
		t.Fatalf("remove source file: %v", err)
	}

	result := Run(Options{Root: root})

	files := findCheck(t, result.Checks, "registered_files")
	want := "probkit set validator --clear && probkit set checker --clear && probkit remove source judge.cpp"
	if files.FixCommand != want {
		t.Fatalf("unexpected fix command %q", files.FixCommand)
	}
	references := findCheck(t, result.Checks, "references")
	if references.FixCommand != "probkit set validator --clear && probkit set checker --clear" {
		t.Fatalf("unexpected references fix command %q", references.FixCommand)
	}
}

func TestRunWarnsOnOrphansAndLeftovers(t *testing.T) {
	root := testutil.NewPackage(t)
	testutil.WriteFile(t, layout.Abs(root, "src/sources/stray.cpp"), []byte("int main(){}"))
	testutil.WriteFile(t, layout.Abs(root, "src/sources/.old.cpp.trash-abc"), nil)
	testutil.WriteFile(t, layout.LockPath(root), []byte("{}"))

	result := Run(Options{Root: root})

	if result.Status != statusWarn {
		t.Fatalf("expected warn, got %s: %#v", result.Status, result.Checks)
	}
	orphans := findCheck(t, result.Checks, "orphans")
	if orphans.Status != statusWarn || !strings.Contains(orphans.Message, "src/sources/stray.cpp") {
		t.Fatalf("unexpected orphans check: %#v", orphans)
	}
	if strings.Contains(orphans.Message, "trash") {
		t.Fatalf("trash files must not count as orphans: %s", orphans.Message)
	}
	leftovers := findCheck(t, result.Checks, "leftovers")
	if leftovers.Status != statusWarn ||
		!strings.Contains(leftovers.Message, layout.LockFileName) ||
		!strings.Contains(leftovers.Message, "src/sources/.old.cpp.trash-abc") {
		t.Fatalf("unexpected leftovers check: %#v", leftovers)
	}
}

func TestRunWarnsOnDuplicateNames(t *testing.T) {
	root := testutil.NewPackage(t)
	content := testutil.ManifestBytes(t, root)
	duplicated := strings.Replace(string(content), `"sources": []`, `"sources": [
    {"source": "src/sources/gen.cpp", "compiler": "", "compiler_args": [], "bin": "", "bin_args": []},
    {"source": "src/sources/gen.cpp", "compiler": "", "compiler_args": [], "bin": "", "bin_args": []}
  ]`, 1)
	if duplicated == string(content) {
		t.Fatal("fixture did not change manifest")
	}
	testutil.WriteFile(t, layout.ManifestPath(root), []byte(duplicated))
	testutil.WriteFile(t, layout.Abs(root, "src/sources/gen.cpp"), nil)

	result := Run(Options{Root: root})

	check := findCheck(t, result.Checks, "duplicates")
	if check.Status != statusWarn || !strings.Contains(check.Message, "source gen.cpp") {
		t.Fatalf("unexpected duplicates check: %#v", check)
	}
}

func TestRunMalformedManifestSkipsDependentChecks(t *testing.T) {
	root := testutil.NewPackage(t)
	testutil.WriteFile(t, layout.ManifestPath(root), []byte("{not json"))

	result := Run(Options{Root: root})

	if !result.Failed() || !result.NonFixable {
		t.Fatalf("expected non-fixable failure, got %#v", result)
	}
	if len(result.Checks) != 3 {
		t.Fatalf("expected layout, manifest and leftovers checks only, got %d", len(result.Checks))
	}
	if findCheck(t, result.Checks, "manifest").Status != statusFail {
		t.Fatal("expected manifest fail")
	}
}

func TestRunReportsMissingDirectories(t *testing.T) {
	root := testutil.NewPackage(t)
	if err := os.RemoveAll(filepath.Join(root, "text")); err != nil {
		t.Fatalf("remove text dir: %v", err)
	}

	result := Run(Options{Root: root})

	check := findCheck(t, result.Checks, "layout")
	if check.Status != statusFail || !strings.HasPrefix(check.FixCommand, "mkdir -p ") {
		t.Fatalf("unexpected layout check: %#v", check)
	}
	if len(result.FixCommands) != 1 {
		t.Fatalf("expected one fix command, got %v", result.FixCommands)
	}
}

func TestShellQuote(t *testing.T) {
	cases := map[string]string{
		"":          "''",
		"plain":     "plain",
		"two words": "'two words'",
		"it's":      `'it'"'"'s'`,
	}
	for input, expected := range cases {
		if got := shellQuote(input); got != expected {
			t.Fatalf("shellQuote(%q) = %q, want %q", input, got, expected)
		}
	}
}

func findCheck(t *testing.T, checks []Check, name string) Check {
	t.Helper()
	for _, check := range checks {
		if check.Name == name {
			return check
		}
	}
	t.Fatalf("check %s not found", name)
	return Check{}
}
