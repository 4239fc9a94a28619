package main

import (
	"errors"
	"io"
	"os"

	"github.com/davidahmann/probkit/core/projectconfig"
)

// version is stamped at release time via ldflags; default stays dev for local builds.
var version = "0.0.0-dev"

const (
	exitOK              = 0
	exitInternalFailure = 2
	exitIntegrity       = 3
	exitNotFound        = 4
	exitConflict        = 5
	exitInvalidInput    = 6
)

// app carries the global flags and the collaborator configuration shared by
// every command of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	dir        string
	configPath string
	jsonOutput bool
	debug      int
	quiet      bool

	config  projectconfig.Config
	started bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(arguments []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, config: projectconfig.Default()}
	root := newRootCmd(a)
	root.SetArgs(arguments)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		var reported reportedExit
		if errors.As(err, &reported) {
			return reported.code
		}
		return a.fail(err)
	}
	return exitOK
}

// reportedExit ends a command whose output is already written with a
// non-zero exit code.
type reportedExit struct {
	code   int
	reason string
}

func (e reportedExit) Error() string {
	return e.reason
}
