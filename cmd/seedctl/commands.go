package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/seedctl/internal/auth"
	"github.com/danmuck/seedctl/internal/config"
	"github.com/danmuck/seedctl/internal/dispatch"
	"github.com/danmuck/seedctl/internal/mcpserver"
	"github.com/danmuck/seedctl/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// errToolFailed marks a command whose envelope reported success=false. The
// envelope is already on stdout, so main only sets the exit code.
var errToolFailed = errors.New("tool reported failure")

func newRootCmd(stdout io.Writer) *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "seedctl",
		Short:         "Detect a project's ORM and run its database seed command",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv(envConfigPath), "path to a seedctl TOML config")

	load := func() (*app, error) { return loadApp(configPath, root.ErrOrStderr()) }
	root.AddCommand(
		newMCPCmd(load),
		newServeCmd(load),
		newSeedCmd(load),
		newDetectCmd(load),
		newListCmd(load),
		newToolsCmd(load),
		newInitConfigCmd(),
	)
	return root
}

type loader func() (*app, error)

func newMCPCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the seeding tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return mcpserver.New(a.dispatcher).Run(cmd.Context())
		},
	}
}

func newServeCmd(load loader) *cobra.Command {
	var (
		addr    string
		withMCP bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the seeding tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.Addr = addr
			}
			srv := server.Appear(a.cfg.Name, a.cfg.Addr, a.cfg.CorsOrigins, a.dispatcher)
			srv.Auth = auth.FromConfig(a.cfg.AuthTokens)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				log.Info().Str("id", srv.ID).Str("addr", srv.Addr).Bool("auth", srv.Auth != nil).Msg("http: serving")
				return srv.Serve(ctx)
			})
			if withMCP {
				g.Go(func() error {
					return mcpserver.New(a.dispatcher).Run(ctx)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&withMCP, "mcp", false, "also serve MCP on stdin/stdout")
	return cmd
}

func newSeedCmd(load loader) *cobra.Command {
	var req dispatch.SeedRequest
	cmd := &cobra.Command{
		Use:   "seed <project-path>",
		Short: "Detect the project type and run its seed command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			req.ProjectPath = args[0]
			res := a.dispatcher.Seed(cmd.Context(), req)
			return emit(cmd.OutOrStdout(), res, res.Success)
		},
	}
	cmd.Flags().StringVar(&req.Env, "env", dispatch.DefaultEnv, "target environment passed to the seed command")
	cmd.Flags().BoolVar(&req.Force, "force", false, "re-seed even if this env was already seeded")
	return cmd
}

func newDetectCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <project-path>",
		Short: "Report the detected project type and marker files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			res := a.dispatcher.DetectProjectType(cmd.Context(), dispatch.PathRequest{ProjectPath: args[0]})
			return emit(cmd.OutOrStdout(), res, res.Success)
		},
	}
}

func newListCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-path>",
		Short: "List seeder files for the detected project type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			res := a.dispatcher.ListSeeders(cmd.Context(), dispatch.PathRequest{ProjectPath: args[0]})
			return emit(cmd.OutOrStdout(), res, res.Success)
		},
	}
}

func newToolsCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}
			return emit(cmd.OutOrStdout(), a.dispatcher.Tools(), true)
		},
	}
}

func newInitConfigCmd() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a starter config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "seedctl.toml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteTemplate(path, overwrite); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing file")
	return cmd
}

func emit(w io.Writer, v any, ok bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if !ok {
		return errToolFailed
	}
	return nil
}
