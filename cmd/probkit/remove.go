package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/davidahmann/probkit/core/registry"
)

type removeOutput struct {
	OK   bool   `json:"ok"`
	Root string `json:"root"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

func newRemoveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove",
		Aliases: []string{"rm"},
		Short:   "Unregister an artifact and delete its file",
		RunE:    unknownKind,
	}
	cmd.AddCommand(newRemoveKindCmd(a, "source", "Remove a source from src/sources", (*registry.Registrar).RemoveSource))
	cmd.AddCommand(newRemoveKindCmd(a, "solution", "Remove a solution from src/solutions", (*registry.Registrar).RemoveSolution))
	cmd.AddCommand(newRemoveKindCmd(a, "testcase", "Remove a testcase input/output pair", (*registry.Registrar).RemoveTestcase))
	return cmd
}

func newRemoveKindCmd(a *app, kind, short string, remove func(*registry.Registrar, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <name>",
		Short: short,
		Args:  exactArgs(1, "name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.registrar()
			if err != nil {
				return err
			}
			if err := remove(r, args[0]); err != nil {
				return err
			}
			a.emit(removeOutput{OK: true, Root: r.Root(), Kind: kind, Name: args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "removed %s %s\n", kind, args[0])
			})
			return nil
		},
	}
}
