package main

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/layout"
	"github.com/davidahmann/probkit/core/projectconfig"
	"github.com/davidahmann/probkit/core/registry"
)

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "probkit",
		Short:         "Scaffold and maintain competitive-programming problem packages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.started = true
			configureLogging(a.stderr, a.debug, a.quiet)
			return a.loadConfig()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.dir, "dir", "C", ".", "Run as if probkit was started in this directory")
	flags.StringVar(&a.configPath, "config", "", "Project config file (default: ./"+projectconfig.DefaultPath+" when present)")
	flags.BoolVar(&a.jsonOutput, "json", false, "Emit JSON output")
	flags.CountVarP(&a.debug, "debug", "d", "Log protocol steps to stderr (repeat for more detail)")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "Disable logging")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return coreerrors.Mark(coreerrors.ErrInvalidValue, err, "parse flags")
	})

	cmd.AddCommand(newNewCmd(a))
	cmd.AddCommand(newInfoCmd(a))
	cmd.AddCommand(newAddCmd(a))
	cmd.AddCommand(newRemoveCmd(a))
	cmd.AddCommand(newSetCmd(a))
	cmd.AddCommand(newDoctorCmd(a))
	cmd.AddCommand(newVersionCmd(a))

	return cmd
}

func (a *app) loadConfig() error {
	if strings.TrimSpace(a.configPath) != "" {
		configuration, err := projectconfig.Load(a.configPath, false)
		if err != nil {
			return err
		}
		a.config = configuration
		return nil
	}
	configuration, err := projectconfig.Load(filepath.Join(a.dir, projectconfig.DefaultPath), true)
	if err != nil {
		return err
	}
	a.config = configuration
	return nil
}

// registrar resolves the enclosing package of --dir.
func (a *app) registrar() (*registry.Registrar, error) {
	root, err := layout.FindRoot(a.dir)
	if err != nil {
		return nil, err
	}
	return registry.New(root, registry.Options{Toolchains: a.config.Toolchains()}), nil
}

// exactArgs is cobra.ExactArgs with a classified error.
func exactArgs(count int, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == count {
			return nil
		}
		return coreerrors.New(coreerrors.ErrInvalidValue, "%s expects %d argument(s) <%s>, got %d", cmd.CommandPath(), count, strings.Join(names, "> <"), len(args))
	}
}

// unknownKind is the RunE of grouping commands such as "add".
func unknownKind(cmd *cobra.Command, args []string) error {
	kinds := make([]string, 0, len(cmd.Commands()))
	for _, child := range cmd.Commands() {
		kinds = append(kinds, child.Name())
	}
	if len(args) == 0 {
		return coreerrors.New(coreerrors.ErrInvalidValue, "%s needs one of %s", cmd.CommandPath(), strings.Join(kinds, "|"))
	}
	return coreerrors.New(coreerrors.ErrInvalidValue, "unknown %s kind %q (expected %s)", cmd.Name(), args[0], strings.Join(kinds, "|"))
}
