// Package doctor reports on the integrity of a problem package: whether the
// manifest and the file tree still agree.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/davidahmann/probkit/core/fsx"
	"github.com/davidahmann/probkit/core/layout"
	"github.com/davidahmann/probkit/core/manifest"
	"github.com/davidahmann/probkit/core/txn"
)

const (
	statusPass = "pass"
	statusWarn = "warn"
	statusFail = "fail"
)

type Options struct {
	Root            string
	ProducerVersion string
}

type Result struct {
	SchemaID        string   `json:"schema_id"`
	SchemaVersion   string   `json:"schema_version"`
	CreatedAt       string   `json:"created_at"`
	ProducerVersion string   `json:"producer_version"`
	Root            string   `json:"root"`
	Status          string   `json:"status"`
	NonFixable      bool     `json:"non_fixable"`
	Summary         string   `json:"summary"`
	FixCommands     []string `json:"fix_commands"`
	Checks          []Check  `json:"checks"`
}

type Check struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	FixCommand string `json:"fix_command,omitempty"`
	NonFixable bool   `json:"non_fixable,omitempty"`
}

func (result Result) Failed() bool {
	return result.Status == statusFail
}

// Run inspects the package at opts.Root without taking the lock. Manifest
// dependent checks are skipped when the manifest cannot be decoded.
func Run(opts Options) Result {
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = "."
	}
	producerVersion := strings.TrimSpace(opts.ProducerVersion)
	if producerVersion == "" {
		producerVersion = "0.0.0-dev"
	}

	checks := []Check{checkLayout(root)}
	loaded, loadErr := txn.View(root)
	checks = append(checks, checkManifest(loadErr))
	if loadErr == nil {
		checks = append(checks,
			checkRegisteredFiles(root, loaded),
			checkReferences(root, loaded),
			checkDuplicates(loaded),
			checkOrphans(root, loaded),
		)
	}
	checks = append(checks, checkLeftovers(root))

	failed := 0
	warned := 0
	nonFixable := false
	fixCommands := make([]string, 0, len(checks))
	seenFixes := map[string]struct{}{}
	for _, check := range checks {
		switch check.Status {
		case statusFail:
			failed++
		case statusWarn:
			warned++
		}
		if check.NonFixable {
			nonFixable = true
		}
		if check.FixCommand != "" {
			if _, ok := seenFixes[check.FixCommand]; !ok {
				seenFixes[check.FixCommand] = struct{}{}
				fixCommands = append(fixCommands, check.FixCommand)
			}
		}
	}

	status := statusPass
	if failed > 0 {
		status = statusFail
	} else if warned > 0 {
		status = statusWarn
	}

	sort.Strings(fixCommands)
	summary := fmt.Sprintf("doctor: status=%s failed=%d warned=%d non_fixable=%t", status, failed, warned, nonFixable)

	return Result{
		SchemaID:        "probkit.doctor.result",
		SchemaVersion:   "1.0.0",
		CreatedAt:       time.Now().UTC().Format(time.RFC3339Nano),
		ProducerVersion: producerVersion,
		Root:            root,
		Status:          status,
		NonFixable:      nonFixable,
		Summary:         summary,
		FixCommands:     fixCommands,
		Checks:          checks,
	}
}

func checkLayout(root string) Check {
	missing := make([]string, 0)
	for _, dir := range layout.Directories {
		info, err := os.Stat(layout.Abs(root, dir))
		if err != nil || !info.IsDir() {
			missing = append(missing, dir)
		}
	}
	if len(missing) > 0 {
		quoted := make([]string, 0, len(missing))
		for _, dir := range missing {
			quoted = append(quoted, shellQuote(layout.Abs(root, dir)))
		}
		return Check{
			Name:       "layout",
			Status:     statusFail,
			Message:    "missing directories: " + strings.Join(missing, ", "),
			FixCommand: "mkdir -p " + strings.Join(quoted, " "),
		}
	}
	return Check{
		Name:    "layout",
		Status:  statusPass,
		Message: "package directories present",
	}
}

func checkManifest(loadErr error) Check {
	if loadErr != nil {
		return Check{
			Name:       "manifest",
			Status:     statusFail,
			Message:    loadErr.Error(),
			NonFixable: true,
		}
	}
	return Check{
		Name:    "manifest",
		Status:  statusPass,
		Message: layout.ManifestFileName + " decodes",
	}
}

type registeredFile struct {
	kind  string
	name  string
	rel   string
	roles []string
}

// fixCommand clears validator and checker references before removing the
// entry, since a referenced source cannot be removed.
func (f registeredFile) fixCommand() string {
	steps := make([]string, 0, len(f.roles)+1)
	for _, role := range f.roles {
		steps = append(steps, "probkit set "+role+" --clear")
	}
	steps = append(steps, fmt.Sprintf("probkit remove %s %s", f.kind, shellQuote(f.name)))
	return strings.Join(steps, " && ")
}

func registeredFiles(loaded manifest.Manifest) []registeredFile {
	files := make([]registeredFile, 0, len(loaded.Sources)+len(loaded.Solutions)+2*len(loaded.Testcases))
	for index, source := range loaded.Sources {
		file := registeredFile{kind: "source", name: source.Name(), rel: source.Source}
		if loaded.Validator != nil && *loaded.Validator == index {
			file.roles = append(file.roles, "validator")
		}
		if loaded.Checker != nil && *loaded.Checker == index {
			file.roles = append(file.roles, "checker")
		}
		files = append(files, file)
	}
	for _, solution := range loaded.Solutions {
		files = append(files, registeredFile{kind: "solution", name: solution.SourceFile.Name(), rel: solution.SourceFile.Source})
	}
	for _, testcase := range loaded.Testcases {
		files = append(files,
			registeredFile{kind: "testcase", name: testcase.Name(), rel: testcase.InputPath},
			registeredFile{kind: "testcase", name: testcase.Name(), rel: testcase.OutputPath},
		)
	}
	return files
}

func checkRegisteredFiles(root string, loaded manifest.Manifest) Check {
	missing := make([]string, 0)
	var fix string
	for _, file := range registeredFiles(loaded) {
		if isRegularFile(layout.Abs(root, file.rel)) {
			continue
		}
		missing = append(missing, file.rel)
		if fix == "" {
			fix = file.fixCommand()
		}
	}
	if len(missing) > 0 {
		return Check{
			Name:       "registered_files",
			Status:     statusFail,
			Message:    "registered files missing on disk: " + strings.Join(missing, ", "),
			FixCommand: fix,
		}
	}
	return Check{
		Name:    "registered_files",
		Status:  statusPass,
		Message: "every registered file exists",
	}
}

func checkReferences(root string, loaded manifest.Manifest) Check {
	problems := make([]string, 0, 2)
	fixes := make([]string, 0, 2)
	references := []struct {
		role     string
		resolve  func() (manifest.SourceFile, bool)
		assigned bool
	}{
		{role: "validator", resolve: loaded.ValidatorSource, assigned: loaded.Validator != nil},
		{role: "checker", resolve: loaded.CheckerSource, assigned: loaded.Checker != nil},
	}
	for _, reference := range references {
		if !reference.assigned {
			continue
		}
		source, ok := reference.resolve()
		if !ok {
			problems = append(problems, reference.role+" index out of range")
			fixes = append(fixes, "probkit set "+reference.role+" --clear")
			continue
		}
		if !isRegularFile(layout.Abs(root, source.Source)) {
			problems = append(problems, fmt.Sprintf("%s %s is missing on disk", reference.role, source.Source))
			fixes = append(fixes, "probkit set "+reference.role+" --clear")
		}
	}
	if len(problems) > 0 {
		return Check{
			Name:       "references",
			Status:     statusFail,
			Message:    strings.Join(problems, "; "),
			FixCommand: strings.Join(fixes, " && "),
		}
	}
	return Check{
		Name:    "references",
		Status:  statusPass,
		Message: "validator and checker resolve",
	}
}

func checkDuplicates(loaded manifest.Manifest) Check {
	duplicates := make([]string, 0)
	collections := []struct {
		kind  string
		names []string
	}{
		{kind: "source", names: loaded.SourceNames()},
		{kind: "solution", names: loaded.SolutionNames()},
		{kind: "testcase", names: loaded.TestcaseNames()},
	}
	for _, collection := range collections {
		seen := map[string]int{}
		for _, name := range collection.names {
			seen[name]++
			if seen[name] == 2 {
				duplicates = append(duplicates, collection.kind+" "+name)
			}
		}
	}
	if len(duplicates) > 0 {
		return Check{
			Name:    "duplicates",
			Status:  statusWarn,
			Message: "names registered more than once, only the first entry is reachable: " + strings.Join(duplicates, ", "),
		}
	}
	return Check{
		Name:    "duplicates",
		Status:  statusPass,
		Message: "registered names are unique",
	}
}

func checkOrphans(root string, loaded manifest.Manifest) Check {
	registered := map[string]struct{}{}
	for _, file := range registeredFiles(loaded) {
		registered[file.rel] = struct{}{}
	}
	orphans := make([]string, 0)
	for _, dir := range layout.ArtifactDirectories {
		entries, err := os.ReadDir(layout.Abs(root, dir))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || fsx.IsTrashName(name) || fsx.IsTempName(name) {
				continue
			}
			rel := layout.Rel(dir, name)
			if _, ok := registered[rel]; !ok {
				orphans = append(orphans, rel)
			}
		}
	}
	if len(orphans) > 0 {
		return Check{
			Name:    "orphans",
			Status:  statusWarn,
			Message: "unregistered files: " + strings.Join(orphans, ", "),
		}
	}
	return Check{
		Name:    "orphans",
		Status:  statusPass,
		Message: "no unregistered files",
	}
}

func checkLeftovers(root string) Check {
	leftovers := make([]string, 0)
	if isRegularFile(layout.LockPath(root)) {
		leftovers = append(leftovers, layout.LockFileName)
	}
	dirs := append([]string{"."}, layout.ArtifactDirectories...)
	for _, dir := range dirs {
		entries, err := os.ReadDir(layout.Abs(root, dir))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if fsx.IsTrashName(entry.Name()) || fsx.IsTempName(entry.Name()) {
				leftovers = append(leftovers, filepath.ToSlash(filepath.Join(dir, entry.Name())))
			}
		}
	}
	if len(leftovers) > 0 {
		return Check{
			Name:    "leftovers",
			Status:  statusWarn,
			Message: "interrupted transaction files (safe to delete when no probkit process is running): " + strings.Join(leftovers, ", "),
		}
	}
	return Check{
		Name:    "leftovers",
		Status:  statusPass,
		Message: "no lock or trash files",
	}
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func shellQuote(value string) string {
	if value == "" {
		return "''"
	}
	if !strings.ContainsAny(value, " \t\n'\"\\$`") {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
