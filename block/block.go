// Package block provides the fixed-size byte-block primitives the CBC
// padding-oracle solver operates on: XOR, PKCS#7 padding, and splitting a
// ciphertext into the block list the rest of the engine works with.
package block

import "fmt"

// XOR returns a new slice containing the byte-wise XOR of b1 and b2.
// b1 and b2 must have equal length. XOR does not modify its inputs.
func XOR(b1, b2 []byte) ([]byte, error) {
	if len(b1) != len(b2) {
		return nil, fmt.Errorf("xor: blocks of different lengths: %d and %d", len(b1), len(b2))
	}

	out := make([]byte, len(b1))
	for i := range out {
		out[i] = b1[i] ^ b2[i]
	}

	return out, nil
}

// Split splits data into chunks of size blockSize. It expects len(data) to be
// a multiple of blockSize. Split does not modify the input slice; each
// returned chunk aliases the corresponding region of data.
func Split(data []byte, blockSize int) ([][]byte, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("split: block size must be positive, got %d", blockSize)
	}
	if len(data)%blockSize != 0 {
		return nil, fmt.Errorf(
			"split: data length (%d) is not a multiple of block size (%d)",
			len(data), blockSize,
		)
	}

	n := len(data) / blockSize
	chunks := make([][]byte, n)
	for i := 0; i < n; i++ {
		chunks[i] = data[i*blockSize : (i+1)*blockSize]
	}

	return chunks, nil
}

// Copy returns a fresh copy of a block, safe to mutate without aliasing the
// original.
func Copy(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
