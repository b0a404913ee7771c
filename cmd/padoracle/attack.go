package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/dkowalski/padoracle/chanlatest"
	"github.com/dkowalski/padoracle/internal/config"
	"github.com/dkowalski/padoracle/oracle"
	"github.com/dkowalski/padoracle/oraclesrc"
	"github.com/dkowalski/padoracle/render"
	"github.com/dkowalski/padoracle/solver"
)

// buildOracle picks a plugin-backed oracle when one is configured, falling
// back to the remote HTTP endpoint otherwise.
func buildOracle(cfg config.Config) (oracle.Oracle, error) {
	if cfg.PluginPath != "" {
		o, err := oraclesrc.LoadPlugin(cfg.PluginPath)
		if err != nil {
			return nil, err
		}
		return o, nil
	}
	return oraclesrc.NewHTTPOracle(cfg.OracleEndpoint, cfg.OracleTimeout), nil
}

// runAttack drives a solver over ciphertext against cfg's oracle, rendering
// live progress to stderr, and returns the recovered plaintext blocks.
// The solver and renderer run as two goroutines coupled by a single-slot
// channel, coordinated with an errgroup exactly like the teacher repo
// coordinates its worker goroutines: the first error from either side is
// returned, and cancelling ctx (e.g. on SIGINT) ends the renderer, which
// closes the channel so the solver stops at its next publish.
func runAttack(ctx context.Context, cfg config.Config, ciphertext []byte) ([][]byte, error) {
	o, err := buildOracle(cfg)
	if err != nil {
		return nil, fmt.Errorf("building oracle: %w", err)
	}

	ch := chanlatest.New[solver.Snapshot]()
	sv := solver.New(o, cfg.BlockSize, ch)

	group, ctx := errgroup.WithContext(ctx)

	var result solver.Result
	group.Go(func() error {
		r, err := sv.Run(ctx, ciphertext)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	group.Go(func() error {
		defer ch.Close()
		return render.Loop(ctx, ch, os.Stderr)
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result.Plaintext, nil
}
