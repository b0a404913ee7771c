package solver

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/dkowalski/padoracle/block"
	"github.com/dkowalski/padoracle/oracle"
)

// Encrypt forges a ciphertext that decrypts to plaintext using nothing but a
// padding oracle: the same bit the attack reads from is enough to build
// messages, not just read them. It works back to front, one block at a
// time, by solving for the "previous block" that makes each chosen
// plaintext block decrypt correctly — exactly Run's inner loop run in
// reverse, against a freshly random scratch block instead of a recovered
// ciphertext block.
//
// The returned ciphertext is iv‖c1‖…‖c_m and decrypts, under the oracle's
// key, to plainText PKCS#7-padded to a multiple of blockSize.
func Encrypt(ctx context.Context, o oracle.Oracle, blockSize int, plainText []byte) ([]byte, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: block size must be positive, got %d", ErrInvalidInput, blockSize)
	}

	padded := block.PadPKCS7(plainText, blockSize)
	plainBlocks, err := block.Split(padded, blockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	final := make([]byte, blockSize)
	if _, err := rand.Read(final); err != nil {
		return nil, fmt.Errorf("solver: generating random final block: %w", err)
	}

	blocks := make([][]byte, len(plainBlocks)+1)
	blocks[len(blocks)-1] = final

	for idx := len(plainBlocks) - 1; idx >= 0; idx-- {
		prev, err := solvePrevBlock(ctx, o, blockSize, blocks[idx+1], plainBlocks[idx])
		if err != nil {
			return nil, err
		}
		blocks[idx] = prev
	}

	out := make([]byte, 0, len(blocks)*blockSize)
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out, nil
}

// solvePrevBlock finds a "previous block" p such that decrypting target
// under p yields exactly want, by running the same right-to-left tail-forge
// used to read a byte's intermediate value (tryGuesses, shared with
// Solver.findGuess), but this time choosing the intermediate value ourselves
// instead of recovering it.
func solvePrevBlock(ctx context.Context, o oracle.Oracle, blockSize int, target, want []byte) ([]byte, error) {
	scratch := make([]byte, blockSize)
	if _, err := rand.Read(scratch); err != nil {
		return nil, fmt.Errorf("solver: generating scratch block: %w", err)
	}
	intermediate := make([]byte, blockSize)

	for k := 1; k <= blockSize; k++ {
		i := blockSize - k
		for j := i + 1; j < blockSize; j++ {
			scratch[j] = intermediate[j] ^ byte(k)
		}

		original := scratch[i]
		guess, found, err := tryGuesses(ctx, o, blockSize, k, i, scratch, target, original, probeHooks{})
		if err == nil && !found && k == 1 {
			// The skipped starting byte is random, not a real ciphertext
			// byte, so it can be the only width-1 hit: search again with a
			// different byte skipped.
			guess, found, err = tryGuesses(ctx, o, blockSize, k, i, scratch, target, original^0x01, probeHooks{})
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrOracleUnavailable, err)
		}
		if !found {
			return nil, fmt.Errorf("%w: forging block, pad width %d: no confirmed byte value", ErrOracleMisbehavior, k)
		}
		intermediate[i] = guess ^ byte(k)
	}

	prev := make([]byte, blockSize)
	for i := range prev {
		prev[i] = intermediate[i] ^ want[i]
	}
	return prev, nil
}
