package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/registry"
)

type setOutput struct {
	OK    bool   `json:"ok"`
	Root  string `json:"root"`
	Field string `json:"field"`
	Value any    `json:"value"`
}

func newSetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change a manifest field",
		RunE:  unknownKind,
	}
	cmd.AddCommand(newSetReferenceCmd(a, "validator", (*registry.Registrar).SetValidator, (*registry.Registrar).ClearValidator))
	cmd.AddCommand(newSetReferenceCmd(a, "checker", (*registry.Registrar).SetChecker, (*registry.Registrar).ClearChecker))
	cmd.AddCommand(newSetValueCmd(a, "title", "<title>", func(r *registry.Registrar, raw string) (any, error) {
		return strings.TrimSpace(raw), r.SetTitle(raw)
	}))
	cmd.AddCommand(newSetValueCmd(a, "time", "<seconds>", func(r *registry.Registrar, raw string) (any, error) {
		seconds, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, markInvalid(err, "time limit")
		}
		return seconds, r.SetTime(seconds)
	}))
	cmd.AddCommand(newSetValueCmd(a, "tags", "<tag,tag,...>", func(r *registry.Registrar, raw string) (any, error) {
		tags := registry.ParseTags(raw)
		return tags, r.SetTags(tags)
	}))
	return cmd
}

func newSetReferenceCmd(a *app, field string, set func(*registry.Registrar, string) (int, error), unset func(*registry.Registrar) error) *cobra.Command {
	var clearFlag bool
	cmd := &cobra.Command{
		Use:   field + " <source-name>",
		Short: "Point the " + field + " at a registered source",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearFlag && len(args) == 0 {
				r, err := a.registrar()
				if err != nil {
					return err
				}
				if err := unset(r); err != nil {
					return err
				}
				a.emit(setOutput{OK: true, Root: r.Root(), Field: field}, func(w io.Writer) {
					fmt.Fprintf(w, "%s cleared\n", field)
				})
				return nil
			}
			if clearFlag || len(args) != 1 {
				return coreerrors.New(coreerrors.ErrInvalidValue, "%s expects exactly one of <source-name> or --clear", cmd.CommandPath())
			}
			r, err := a.registrar()
			if err != nil {
				return err
			}
			index, err := set(r, args[0])
			if err != nil {
				return err
			}
			a.emit(setOutput{OK: true, Root: r.Root(), Field: field, Value: index}, func(w io.Writer) {
				fmt.Fprintf(w, "%s set to %s (source #%d)\n", field, args[0], index)
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearFlag, "clear", false, "Unset the "+field)
	return cmd
}

func newSetValueCmd(a *app, field, argName string, apply func(*registry.Registrar, string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   field + " " + argName,
		Short: "Set the problem " + field,
		Args:  exactArgs(1, strings.Trim(argName, "<>")),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.registrar()
			if err != nil {
				return err
			}
			value, err := apply(r, args[0])
			if err != nil {
				return err
			}
			a.emit(setOutput{OK: true, Root: r.Root(), Field: field, Value: value}, func(w io.Writer) {
				fmt.Fprintf(w, "%s set to %v\n", field, value)
			})
			return nil
		},
	}
}

func markInvalid(err error, what string) error {
	return coreerrors.Mark(coreerrors.ErrInvalidValue, err, "%s", what)
}
