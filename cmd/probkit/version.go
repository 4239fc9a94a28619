package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

type versionOutput struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	GOOS    string `json:"goos"`
	GOARCH  string `json:"goarch"`
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.emit(versionOutput{OK: true, Version: version, GOOS: runtime.GOOS, GOARCH: runtime.GOARCH}, func(w io.Writer) {
				fmt.Fprintf(w, "probkit %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
			})
			return nil
		},
	}
}
