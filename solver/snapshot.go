package solver

import "github.com/dkowalski/padoracle/block"

// ByteSlot is a single byte position in an intermediate or plaintext block.
// Value is meaningless when Solved is false — renderers must check Solved
// before displaying it, never rely on the zero value standing for "unknown".
type ByteSlot struct {
	Value  byte
	Solved bool
}

// ByteRow holds one full block's worth of byte slots.
type ByteRow []ByteSlot

func newByteRow(size int) ByteRow {
	return make(ByteRow, size)
}

func (r ByteRow) clone() ByteRow {
	out := make(ByteRow, len(r))
	copy(out, r)
	return out
}

// Snapshot is an immutable, versioned view of solver progress, safe to hand
// to a renderer goroutine running concurrently with further solving. Every
// slice it carries is a defensive copy: nothing in a published Snapshot is
// ever mutated again by the solver that produced it.
type Snapshot struct {
	// Version increases by one on every publish; renderers can use it to
	// detect that an update was missed without needing every intermediate
	// value.
	Version uint64

	// Complete is true once every target block has been fully recovered.
	Complete bool

	// BlockSize is the cipher's block size in bytes.
	BlockSize int

	// BlockCount is the number of target blocks (ciphertext block count
	// minus the leading IV).
	BlockCount int

	// CurrentBlock is the 1-based index of the target block currently being
	// attacked. Meaningless once Complete is true.
	CurrentBlock int

	// ByteIndex is the position within the current block being probed,
	// counting from the start (BlockSize-1 = last byte).
	ByteIndex int

	// Guess is the byte value currently being tried against the oracle, or
	// -1 if no guess is in flight (e.g. between bytes).
	Guess int

	// PadWidth is the padding width k (1..BlockSize) the current tail
	// rewrite is forging, or 0 in the initial snapshot and in the snapshot
	// published after each block is finished.
	PadWidth int

	// Ciphertext holds the original, untouched ciphertext blocks, index 0
	// being the IV.
	Ciphertext [][]byte

	// WorkingPrev holds the scratch "previous block" each target block is
	// attacked through. WorkingPrev[m] is the mutated stand-in for block m
	// used while attacking block m+1; it starts as a copy of Ciphertext[m]
	// and is rewritten byte by byte as that attack proceeds.
	WorkingPrev [][]byte

	// Intermediate holds, per block, the recovered intermediate bytes
	// (cipher.Decrypt(C_n) before XOR with the previous block). Index 0 (the
	// IV row) is always all-unsolved: the IV is never a decryption target.
	Intermediate []ByteRow

	// Plaintext holds, per block, the recovered plaintext bytes. Index 0 is
	// always all-unsolved, for the same reason as Intermediate.
	Plaintext []ByteRow

	// Stats carries per-block oracle-call telemetry.
	Stats Stats
}

// PlaintextBytes concatenates every solved plaintext block, in order, into
// the final recovered message. Unsolved bytes are rendered as zero.
func (s Snapshot) PlaintextBytes() []byte {
	out := make([]byte, 0, len(s.Plaintext)*s.BlockSize)
	for _, row := range s.Plaintext[1:] {
		for _, slot := range row {
			out = append(out, slot.Value)
		}
	}
	return out
}

func cloneBlocks(blocks [][]byte) [][]byte {
	out := make([][]byte, len(blocks))
	for i, b := range blocks {
		out[i] = block.Copy(b)
	}
	return out
}

func cloneRows(rows []ByteRow) []ByteRow {
	out := make([]ByteRow, len(rows))
	for i, r := range rows {
		out[i] = r.clone()
	}
	return out
}
