// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/ohos-build/hb/internal/configloader"
	"github.com/ohos-build/hb/internal/coredb"
	"github.com/ohos-build/hb/internal/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newToolCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "tool",
		Short: "Maintenance helpers",
	}
	c.AddCommand(newResetArgsCmd(a))
	c.AddCommand(newHistoryCmd(a))
	c.AddCommand(newInitCmd())
	return c
}

func newResetArgsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-args",
		Short: "Delete every persisted argument file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.store.ResetAll(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[OK] args reset in %s\n", a.store.Dir())
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		workflow string
		name     string
		limit    int
		output   string
	)
	c := &cobra.Command{
		Use:   "history",
		Short: "List recently persisted argument values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.history == nil {
				return errors.New("history database unavailable")
			}
			if workflow != "" {
				if _, _, err := a.store.Paths(types.Workflow(workflow)); err != nil {
					return err
				}
			}
			entries, err := a.history.List(cmd.Context(), coredb.HistoryFilter{
				Workflow: types.Workflow(workflow),
				Name:     name,
				Limit:    limit,
			})
			if err != nil {
				return err
			}
			switch output {
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if entries == nil {
					entries = []coredb.HistoryEntry{}
				}
				if err := enc.Encode(entries); err != nil {
					return err
				}
				return enc.Close()
			case "", "table":
			default:
				return fmt.Errorf("unsupported output %q (use table or yaml)", output)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "(no history)")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WHEN\tWORKFLOW\tARG\tVALUE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", humanize.Time(e.Timestamp), e.Workflow, e.Name, e.Value)
			}
			return tw.Flush()
		},
	}
	c.Flags().StringVar(&workflow, "workflow", "", "only show one workflow (build|set|env|clean)")
	c.Flags().StringVar(&name, "arg", "", "only show one argument")
	c.Flags().IntVar(&limit, "limit", 20, "maximum entries to show (0 for all)")
	c.Flags().StringVarP(&output, "output", "o", "table", "output format (table|yaml)")
	return c
}

const initConfigTemplate = `# hb tool configuration. Relative paths resolve against root_path, or
# against this file's directory when root_path is unset.
os_level: standard
out_path: out
args_dir: build/hb/resources/args
prebuilts_config: build/prebuilts_download_config.json
log_format: text
python: python3
products: {}
`

func newInitCmd() *cobra.Command {
	var force bool
	c := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter " + configloader.DefaultFileName,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
			target := filepath.Join(dir, configloader.DefaultFileName)
			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", target)
			}
			if err := os.WriteFile(target, []byte(initConfigTemplate), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", target, err)
			}
			if _, err := configloader.Load(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[OK] wrote %s\n", target)
			return nil
		},
	}
	c.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return c
}
