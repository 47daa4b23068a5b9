// Package cli implements the importls command-line commands.
package cli

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.lsp.dev/protocol"

	"github.com/importls/importls/internal/logger"
	"github.com/importls/importls/internal/registry"
)

// CheckParams contains parameters for the Check command
type CheckParams struct {
	Origin   string
	CacheDir string
	LogLevel string
}

// Check probes an origin for a registry configuration and reports the result
func Check(ctx context.Context, params CheckParams) error {
	log := logger.New(params.LogLevel, nil)
	reg, err := registry.New(params.CacheDir, log)
	if err != nil {
		return err
	}

	err = reg.CheckOrigin(ctx, params.Origin)
	fmt.Println(renderCheck(params.Origin, err))
	if err != nil {
		return fmt.Errorf("origin %s has no usable registry configuration", params.Origin)
	}
	return nil
}

// EnableParams contains parameters for the Enable command
type EnableParams struct {
	Origin   string
	CacheDir string
	LogLevel string
}

// Enable fetches and validates an origin's configuration, warming the
// on-disk fetch cache for later completion runs
func Enable(ctx context.Context, params EnableParams) error {
	log := logger.New(params.LogLevel, nil)
	reg, err := registry.New(params.CacheDir, log)
	if err != nil {
		return err
	}

	if err := reg.Enable(ctx, params.Origin); err != nil {
		fmt.Println(renderCheck(params.Origin, err))
		return fmt.Errorf("failed to enable origin %s: %w", params.Origin, err)
	}
	fmt.Println(renderCheck(params.Origin, nil))
	return nil
}

// CompleteParams contains parameters for the Complete command
type CompleteParams struct {
	Specifier  string
	Offset     int
	ConfigPath string
	Origins    []string
	CacheDir   string
	LogLevel   string
}

// Complete enables the configured origins and prints the completion
// candidates for a specifier. A negative offset means end of specifier.
func Complete(ctx context.Context, params CompleteParams) error {
	log := logger.New(params.LogLevel, nil)
	cfg, err := LoadConfig(params.ConfigPath)
	if err != nil {
		return err
	}

	reg, err := registry.New(params.CacheDir, log)
	if err != nil {
		return err
	}
	origins := append(cfg.Origins, params.Origins...)
	for _, origin := range origins {
		if err := reg.Enable(ctx, origin); err != nil {
			log.Warn().Str("origin", origin).Err(err).Msg("Could not enable origin")
		}
	}

	offset := params.Offset
	length := utf8.RuneCountInString(params.Specifier)
	if offset < 0 || offset > length {
		offset = length
	}
	rng := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: uint32(length)},
	}

	items, _ := reg.GetCompletions(ctx, params.Specifier, offset, rng,
		func(string) bool { return false })
	fmt.Println(renderCompletions(params.Specifier, items))
	return nil
}

// StatusParams contains parameters for the Status command
type StatusParams struct {
	ConfigPath string
	CacheDir   string
	LogLevel   string
}

// Status displays the CLI configuration and the origins it would enable
func Status(ctx context.Context, params StatusParams) error {
	log := logger.New(params.LogLevel, nil)
	cfg, err := LoadConfig(params.ConfigPath)
	if err != nil {
		return err
	}

	reg, err := registry.New(params.CacheDir, log)
	if err != nil {
		return err
	}
	for _, origin := range cfg.Origins {
		if err := reg.Enable(ctx, origin); err != nil {
			log.Warn().Str("origin", origin).Err(err).Msg("Could not enable origin")
		}
	}

	fmt.Println(renderStatus(params.ConfigPath, params.CacheDir, reg.Origins()))
	return nil
}
