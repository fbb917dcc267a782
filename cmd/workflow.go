// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"io"
	"runtime"
	"strings"

	"github.com/ohos-build/hb/internal/args"
	"github.com/ohos-build/hb/internal/argsloader"
	"github.com/ohos-build/hb/internal/engine"
	"github.com/ohos-build/hb/internal/executor"
	"github.com/ohos-build/hb/internal/generator"
	"github.com/ohos-build/hb/internal/modules"
	"github.com/ohos-build/hb/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const dryRunFlag = "dry-run"

// newWorkflowCmd returns a command whose raw argv goes to the argument
// resolver, so schema options and options of other layers can be mixed.
func newWorkflowCmd(a *app, workflow types.Workflow, use, short string, run func(cmd *cobra.Command, resolved map[string]*args.Argument, argv []string) error, extra ...func(*pflag.FlagSet)) *cobra.Command {
	return &cobra.Command{
		Use:                use + " [options]",
		Short:              short,
		DisableFlagParsing: true,
		ValidArgsFunction:  a.completeOptions(workflow, extra...),
		RunE: func(cmd *cobra.Command, argv []string) error {
			if wantsHelp(argv) {
				return a.resolver.PrintHelp(workflow, cmd.OutOrStdout(), extra...)
			}
			resolved, err := a.resolver.ResolveAll(cmd.Context(), workflow, argv)
			if err != nil {
				return err
			}
			return run(cmd, resolved, argv)
		},
	}
}

func wantsHelp(argv []string) bool {
	for _, arg := range argv {
		if arg == "--" {
			return false
		}
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func dryRunOption(flags *pflag.FlagSet) {
	flags.Bool(dryRunFlag, false, "print the gn command instead of running it")
}

func parseDryRun(argv []string) bool {
	flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)
	dryRunOption(flags)
	if err := flags.Parse(argv); err != nil {
		return false
	}
	v, _ := flags.GetBool(dryRunFlag)
	return v
}

func newBuildCmd(a *app) *cobra.Command {
	return newWorkflowCmd(a, types.WorkflowBuild, "build", "Resolve build arguments and generate build files",
		func(cmd *cobra.Command, resolved map[string]*args.Argument, argv []string) error {
			dryRun := parseDryRun(argv)
			if dryRun {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				if err := enc.Encode(engine.BuildPlan(types.WorkflowBuild, resolved)); err != nil {
					return err
				}
				if err := enc.Close(); err != nil {
					return err
				}
			}
			gnPath, err := generator.Locate(a.cfg.RootPath, a.cfg.PrebuiltsConfig, runtime.GOOS, runtime.GOARCH)
			if err != nil {
				return err
			}
			gn, err := generator.New(generator.Config{
				Executable:       gnPath,
				OutPath:          a.cfg.OutPath,
				RootPath:         a.cfg.RootPath,
				ScriptExecutable: a.cfg.Python,
				ConstrainedOS:    a.cfg.IsConstrainedOS(),
				Runner:           &executor.Runner{LogPath: a.cfg.LogPath, Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()},
				DryRun:           dryRun,
				Out:              cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			a.session.InitBuild(modules.NewBuildModule(resolved, a.registry, gn))
			m, err := a.session.BuildModule()
			if err != nil {
				return err
			}
			return m.Run(cmd.Context())
		}, dryRunOption)
}

func (a *app) initSet(cmd *cobra.Command, resolved map[string]*args.Argument) (*modules.SetModule, error) {
	menu := &modules.TextMenu{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	a.session.InitSet(modules.NewSetModule(resolved, a.registry, menu, modules.StaticProducts(a.cfg.Products), a.store))
	return a.session.SetModule()
}

func newSetCmd(a *app) *cobra.Command {
	c := newWorkflowCmd(a, types.WorkflowSet, "set", "Choose the product and build parameters",
		func(cmd *cobra.Command, resolved map[string]*args.Argument, _ []string) error {
			m, err := a.initSet(cmd, resolved)
			if err != nil {
				return err
			}
			if err := m.SetProduct(cmd.Context()); err != nil {
				return err
			}
			return m.SetParameter(cmd.Context())
		})
	c.AddCommand(newWorkflowCmd(a, types.WorkflowSet, "product", "Choose the product",
		func(cmd *cobra.Command, resolved map[string]*args.Argument, _ []string) error {
			m, err := a.initSet(cmd, resolved)
			if err != nil {
				return err
			}
			return m.SetProduct(cmd.Context())
		}))
	c.AddCommand(newWorkflowCmd(a, types.WorkflowSet, "parameter", "Set build parameters",
		func(cmd *cobra.Command, resolved map[string]*args.Argument, _ []string) error {
			m, err := a.initSet(cmd, resolved)
			if err != nil {
				return err
			}
			return m.SetParameter(cmd.Context())
		}))
	return c
}

func newEnvCmd(a *app) *cobra.Command {
	return newWorkflowCmd(a, types.WorkflowEnv, "env", "Show the resolved environment arguments",
		func(cmd *cobra.Command, resolved map[string]*args.Argument, _ []string) error {
			a.session.InitEnv(modules.NewEnvModule(resolved, a.registry))
			m, err := a.session.EnvModule()
			if err != nil {
				return err
			}
			if err := m.Resolve(cmd.Context()); err != nil {
				return err
			}
			return m.Show(cmd.OutOrStdout())
		})
}

func newCleanCmd(a *app) *cobra.Command {
	return newWorkflowCmd(a, types.WorkflowClean, "clean", "Remove build output and persisted arguments",
		func(cmd *cobra.Command, resolved map[string]*args.Argument, _ []string) error {
			a.session.InitClean(modules.NewCleanModule(resolved, a.registry, a.store, a.cfg.OutPath))
			m, err := a.session.CleanModule()
			if err != nil {
				return err
			}
			return m.Run(cmd.Context())
		})
}

// completeOptions offers the schema options of workflow.
func (a *app) completeOptions(workflow types.Workflow, extra ...func(*pflag.FlagSet)) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if !strings.HasPrefix(toComplete, "-") {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		if a.store == nil {
			if err := a.setup(cmd); err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
		}
		schema, err := a.store.Load(workflow)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		flags := pflag.NewFlagSet(string(workflow), pflag.ContinueOnError)
		if err := argsloader.RegisterSchema(flags, schema); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		for _, fn := range extra {
			fn(flags)
		}
		var out []string
		flags.VisitAll(func(f *pflag.Flag) {
			name := "--" + f.Name
			if strings.HasPrefix(name, toComplete) {
				out = append(out, name+"\t"+f.Usage)
			}
		})
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}
