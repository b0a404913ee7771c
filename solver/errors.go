package solver

import "errors"

// ErrInvalidInput is returned when the ciphertext is not block-aligned or
// has fewer than two blocks (an IV plus at least one target block).
var ErrInvalidInput = errors.New("solver: invalid input")

// ErrOracleMisbehavior is returned when no guess in 0..=255 produces a valid
// padding verdict at some (block, pad width) — the oracle is not behaving
// like a pure PKCS#7 validator.
var ErrOracleMisbehavior = errors.New("solver: oracle misbehavior")

// ErrOracleUnavailable wraps any error the oracle itself raised (network
// failure, timeout, panic recovered from a misbehaving plugin).
var ErrOracleUnavailable = errors.New("solver: oracle unavailable")

// ErrCancelled is returned when the state channel was closed out from under
// the solver — e.g. the renderer observed a user interrupt.
var ErrCancelled = errors.New("solver: cancelled")
