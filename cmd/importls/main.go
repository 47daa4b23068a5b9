// Package main is the entry point for the importls CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	ilscli "github.com/importls/importls/internal/cli"
	"github.com/importls/importls/pkg/version"
)

func main() {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, _ := os.UserHomeDir()
		cacheHome = filepath.Join(home, ".cache")
	}
	cacheDir := filepath.Join(cacheHome, "importls", "registries")

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	defaultConfig := ilscli.FindConfig(filepath.Join(configHome, "importls"))

	app := &cli.Command{
		Name:                  "importls",
		Usage:                 "Registry import completions for module specifiers",
		Version:               version.Version,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("IMPORTLS_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "cache-dir",
				Value:   cacheDir,
				Usage:   "Directory for the registry fetch cache",
				Sources: cli.EnvVars("IMPORTLS_CACHE_DIR"),
			},
			&cli.StringFlag{
				Name:    "config",
				Value:   defaultConfig,
				Usage:   "Path to an importls config file",
				Sources: cli.EnvVars("IMPORTLS_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Probe an origin for a registry configuration",
				ArgsUsage: "<origin>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected exactly one origin argument")
					}
					return ilscli.Check(ctx, ilscli.CheckParams{
						Origin:   cmd.Args().Get(0),
						CacheDir: cmd.String("cache-dir"),
						LogLevel: cmd.String("log-level"),
					})
				},
			},
			{
				Name:      "enable",
				Usage:     "Fetch and validate an origin's registry configuration",
				ArgsUsage: "<origin>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected exactly one origin argument")
					}
					return ilscli.Enable(ctx, ilscli.EnableParams{
						Origin:   cmd.Args().Get(0),
						CacheDir: cmd.String("cache-dir"),
						LogLevel: cmd.String("log-level"),
					})
				},
			},
			{
				Name:      "complete",
				Usage:     "Print completion candidates for a partial specifier",
				ArgsUsage: "<specifier>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "offset",
						Value: -1,
						Usage: "Cursor offset in characters (default: end of specifier)",
					},
					&cli.StringSliceFlag{
						Name:  "origin",
						Usage: "Origin to enable in addition to the config file",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("expected exactly one specifier argument")
					}
					return ilscli.Complete(ctx, ilscli.CompleteParams{
						Specifier:  cmd.Args().Get(0),
						Offset:     int(cmd.Int("offset")),
						ConfigPath: cmd.String("config"),
						Origins:    cmd.StringSlice("origin"),
						CacheDir:   cmd.String("cache-dir"),
						LogLevel:   cmd.String("log-level"),
					})
				},
			},
			{
				Name:  "status",
				Usage: "Show the configured origins and cache location",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return ilscli.Status(ctx, ilscli.StatusParams{
						ConfigPath: cmd.String("config"),
						CacheDir:   cmd.String("cache-dir"),
						LogLevel:   cmd.String("log-level"),
					})
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
