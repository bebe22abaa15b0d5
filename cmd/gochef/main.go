package main

import (
	"fmt"
	"gochef/internal/client"
	"gochef/internal/config"
	"gochef/internal/logging"
	"gochef/internal/pipeline"
	"gochef/internal/store"
	"gochef/pkg/utils"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gochef: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "gochef",
		Short: "CLI for CyberChef-server",
		Long: `gochef reads text from standard input, sends it through a stored recipe
on a stored CyberChef server and prints the result.

Recipes and servers live in ~/.gochef/gochef.db, which is created and seeded
with a Base64 recipe and a local server on first use.

Example:
  echo hello | gochef --recipe 1 --server 1`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, configFile, in, out)
		},
	}

	cmd.SetOut(out)

	cmd.Flags().Int64P("recipe", "r", 1, "Selects recipe by ID")
	cmd.Flags().Int64P("server", "s", 1, "Selects server by ID")
	cmd.Flags().BoolP("verbose", "v", false, "Enable debug logging on stderr")
	cmd.Flags().StringVar(&configFile, "config", "", "Config file (default ~/.gochef/config.yaml)")

	return cmd
}

func run(cmd *cobra.Command, configFile string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := utils.EnsureParentDir(cfg.StorePath); err != nil {
		return fmt.Errorf("open store: %w: %v", store.ErrUnavailable, err)
	}
	st, err := store.Open(cfg.StorePath, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	return pipeline.Run(cmd.Context(), pipeline.Options{
		RecipeID: cfg.RecipeID,
		ServerID: cfg.ServerID,
		Store:    st,
		Client:   client.New(nil, cfg.UserAgent, logger),
		Logger:   logger,
	}, in, out)
}
