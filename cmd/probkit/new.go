package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/layout"
	"github.com/davidahmann/probkit/core/manifest"
	"github.com/davidahmann/probkit/core/registry"
)

type newOutput struct {
	OK    bool     `json:"ok"`
	Root  string   `json:"root"`
	Title string   `json:"title"`
	Time  float64  `json:"time"`
	Tags  []string `json:"tags"`
}

func newNewCmd(a *app) *cobra.Command {
	var title string
	var timeLimit float64
	var tags string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a problem package directory",
		Args:  exactArgs(1, "name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !layout.IsValidProblemName(name) {
				return coreerrors.New(coreerrors.ErrInvalidName, "problem name %q must use lowercase letters, digits and '-'", name)
			}
			if strings.TrimSpace(title) == "" {
				title = layout.TitleFromName(name)
			}
			if !cmd.Flags().Changed("time") {
				timeLimit = a.config.Problem.TimeLimit
			}
			if err := registry.CheckTimeLimit(timeLimit); err != nil {
				return err
			}
			tagList := a.config.Problem.Tags
			if cmd.Flags().Changed("tags") {
				tagList = registry.ParseTags(tags)
			}

			m := manifest.New(strings.TrimSpace(title), timeLimit, tagList)
			root := filepath.Join(a.dir, name)
			if err := layout.Create(root, m); err != nil {
				return err
			}
			a.emit(newOutput{OK: true, Root: root, Title: m.Title, Time: m.Time, Tags: m.Tags}, func(w io.Writer) {
				fmt.Fprintf(w, "created %s (%s, %s)\n", root, m.Title, formatSeconds(m.Time))
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Problem title (default: derived from name)")
	cmd.Flags().Float64Var(&timeLimit, "time", 0, "Time limit in seconds (default: problem.time_limit)")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma separated tags (default: problem.tags)")
	return cmd
}
