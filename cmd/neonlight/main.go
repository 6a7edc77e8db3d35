// Package main provides the command line hosts for NeonLight: a native GL
// window and a terminal renderer.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/normanking/neonlight/internal/config"
	"github.com/normanking/neonlight/internal/logging"
)

// Version information (set at build time)
var version = "dev"

func init() {
	// GLFW must run on the main thread
	runtime.LockOSThread()
}

type globals struct {
	configDir string
	logLevel  string

	store  *config.Store
	syslog *logging.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "neonlight",
		Short:         "NeonLight - animated assistant status light",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.Open(g.configDir)
			if err != nil {
				return err
			}
			g.store = store
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.syslog != nil {
				g.syslog.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configDir, "config-dir", "", "config directory (default ~/.neonlight)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override logging.level")

	rootCmd.AddCommand(
		newGLCmd(g),
		newTermCmd(g),
		newConfigCmd(g),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "neonlight %s\n", version)
			},
		},
	)
	return rootCmd
}

// openLogger starts file logging. console is off for the terminal host,
// which owns the screen.
func (g *globals) openLogger(console bool) (*logging.Logger, error) {
	lc := g.store.Config().Logging
	if g.logLevel != "" {
		lc.Level = g.logLevel
	}
	lc.Console = lc.Console && console

	syslog, err := logging.New(lc.LoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	g.syslog = syslog
	return syslog, nil
}

func newConfigCmd(g *globals) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			RunE: func(cmd *cobra.Command, args []string) error {
				out, err := yaml.Marshal(g.store.AllSettings())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", g.store.Path(), out)
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), g.store.Path())
			},
		},
	)
	return configCmd
}
