// Package render draws solver.Snapshot values to a terminal as they arrive,
// the consumer side of the solver's progress channel.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dkowalski/padoracle/chanlatest"
	"github.com/dkowalski/padoracle/solver"
)

// frameRate bounds how often the table is redrawn; the channel may be
// publishing far faster than this during the 256-guess inner loop, and
// there is no value in drawing every one of them.
const frameRate = 30

var frameInterval = time.Second / frameRate

const unsolvedGlyph = "??"

// table bundles the styles a single draw needs, scoped to the renderer
// backing a particular output stream rather than the process's stdout: a
// Loop writing into a pipe or a test buffer must not pick up color codes
// detected against the real terminal.
type table struct {
	header  lipgloss.Style
	solved  lipgloss.Style
	current lipgloss.Style
	unknown lipgloss.Style
}

func newTable(out io.Writer) table {
	r := lipgloss.NewRenderer(out, termenv.WithColorCache(true))
	return table{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		solved:  r.NewStyle().Foreground(lipgloss.Color("10")),
		current: r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		unknown: r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Loop drains ch until it closes or ctx is cancelled, writing a redrawn
// progress table to out after every frame interval's worth of updates. It
// returns nil on a clean channel close, and ctx.Err() on cancellation.
func Loop(ctx context.Context, ch *chanlatest.Chan[solver.Snapshot], out io.Writer) error {
	t := newTable(out)
	lastDraw := time.Time{}

	for {
		snap, open, err := ch.Get(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return fmt.Errorf("render: %w", err)
		}
		if !open {
			return nil
		}

		if elapsed := time.Since(lastDraw); elapsed < frameInterval {
			time.Sleep(frameInterval - elapsed)
		}
		fmt.Fprint(out, t.renderFrame(snap))
		lastDraw = time.Now()

		if snap.Complete {
			fmt.Fprintf(out, "\nrecovered: %s\n", hexString(snap.PlaintextBytes()))
			return nil
		}
	}
}

// renderFrame formats one full table for a snapshot: one row per ciphertext
// block (the IV first), three columns after the block label: the working
// previous block the row's block is attacked through (empty for the IV row),
// then the row's intermediate and plaintext bytes.
func (t table) renderFrame(snap solver.Snapshot) string {
	out := t.header.Render(fmt.Sprintf(
		"block %d/%d  byte %d  pad width k=%d  guess=%s",
		snap.CurrentBlock, snap.BlockCount, blockByteIndex(snap), snap.PadWidth, guessString(snap.Guess),
	)) + "\n"

	out += t.header.Render(fmt.Sprintf("%-6s %-36s %-36s %-36s", "block", "working prev", "intermediate", "plaintext")) + "\n"

	for i := range snap.WorkingPrev {
		label := fmt.Sprintf("%d", i)
		if i == 0 {
			label = "iv"
		}
		workingPrevCol := ""
		if i > 0 {
			workingPrevCol = hexString(snap.WorkingPrev[i-1])
		}
		intermediateCol := t.renderRow(snap.Intermediate[i], i == snap.CurrentBlock, snap.ByteIndex)
		plaintextCol := t.renderRow(snap.Plaintext[i], i == snap.CurrentBlock, snap.ByteIndex)
		out += fmt.Sprintf("%-6s %-36s %-36s %-36s\n", label, workingPrevCol, intermediateCol, plaintextCol)
	}

	return out
}

// blockByteIndex reports the from-the-start position of the byte being
// probed, for the human-readable status line.
func blockByteIndex(snap solver.Snapshot) int {
	if snap.BlockSize == 0 {
		return 0
	}
	return snap.ByteIndex
}

func guessString(g int) string {
	if g < 0 {
		return "-"
	}
	return fmt.Sprintf("0x%02x", g)
}

func hexString(b []byte) string {
	out := make([]byte, 0, len(b)*2)
	const hexDigits = "0123456789abcdef"
	for _, c := range b {
		out = append(out, hexDigits[c>>4], hexDigits[c&0x0f])
	}
	return string(out)
}

func (t table) renderRow(row []solver.ByteSlot, isCurrentBlock bool, byteIndex int) string {
	out := ""
	for i, slot := range row {
		switch {
		case !slot.Solved:
			out += t.unknown.Render(unsolvedGlyph)
		case isCurrentBlock && i == byteIndex:
			out += t.current.Render(fmt.Sprintf("%02x", slot.Value))
		default:
			out += t.solved.Render(fmt.Sprintf("%02x", slot.Value))
		}
	}
	return out
}
