// Package oracle defines the padding-oracle capability the solver consumes:
// a function from a two-block probe to a boolean verdict. It deliberately
// knows nothing about how the verdict is produced — HTTP, a loaded plugin,
// or an in-process reference implementation are all just Oracle values.
package oracle

import "context"

// Oracle reports whether decrypting prev‖target yields syntactically valid
// PKCS#7 padding. prev and target are full, block-sized slices. Oracle must
// be a pure function of (prev, target): no state that changes meaning across
// calls. Implementations may fail (network, timeout); such failures surface
// as an error, never folded into a false verdict.
type Oracle interface {
	Check(ctx context.Context, prev, target []byte) (bool, error)
}

// Func adapts a plain function to the Oracle interface, the same way
// http.HandlerFunc adapts a function to http.Handler.
type Func func(ctx context.Context, prev, target []byte) (bool, error)

// Check calls f.
func (f Func) Check(ctx context.Context, prev, target []byte) (bool, error) {
	return f(ctx, prev, target)
}
