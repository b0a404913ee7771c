package oraclesrc

import (
	"context"
	"errors"
	"fmt"
	"plugin"

	"github.com/dkowalski/padoracle/oracle"
)

// ErrPluginLoad is returned when the shared object at the given path cannot
// be opened or does not export the expected symbol.
var ErrPluginLoad = errors.New("oraclesrc: failed to load plugin")

// ErrPluginSignature is returned when the exported symbol exists but its
// signature does not match func(prev, target []byte) (bool, error).
var ErrPluginSignature = errors.New("oraclesrc: plugin symbol has the wrong signature")

// submitGuessSymbol is the exported name user plugins must provide.
const submitGuessSymbol = "SubmitGuess"

// LoadPlugin opens a Go plugin built with `go build -buildmode=plugin` and
// adapts its exported SubmitGuess function into an oracle.Oracle. This is
// the one place in the module that reaches for the standard library's
// plugin package rather than a third-party dependency: dynamic code loading
// at the ELF/toolchain level has no idiomatic ecosystem substitute, since it
// depends on details (build IDs, ABI) only the Go toolchain itself controls.
func LoadPlugin(path string) (oracle.Oracle, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %s", ErrPluginLoad, path, err)
	}

	sym, err := p.Lookup(submitGuessSymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: looking up %s in %s: %s", ErrPluginLoad, submitGuessSymbol, path, err)
	}

	fn, ok := sym.(func(prev, target []byte) (bool, error))
	if !ok {
		return nil, fmt.Errorf("%w: %s has type %T, want func([]byte, []byte) (bool, error)",
			ErrPluginSignature, submitGuessSymbol, sym)
	}

	return oracle.Func(func(_ context.Context, prev, target []byte) (bool, error) {
		return fn(prev, target)
	}), nil
}
