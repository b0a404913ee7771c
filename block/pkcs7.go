package block

import "fmt"

// ErrInvalidPadding is returned by StripPKCS7 when the trailing bytes of the
// last block do not form syntactically valid PKCS#7 padding.
var ErrInvalidPadding = fmt.Errorf("block: invalid PKCS#7 padding")

// PadPKCS7 pads data to a multiple of size by appending the number of padding
// bytes needed, each set to that count. For example, "YELLOW SUBMARINE" (16
// bytes) padded to size 20 is "YELLOW SUBMARINE\x04\x04\x04\x04". If data is
// already a multiple of size, a full extra block of padding is added, so the
// padding can always be located unambiguously.
// PadPKCS7 does not modify the input slice.
func PadPKCS7(data []byte, size int) []byte {
	pad := size - len(data)%size
	padded := make([]byte, len(data)+pad)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(pad)
	}
	return padded
}

// StripPKCS7 concatenates blocks and removes the PKCS#7 padding from the
// final byte block, per the rule: let p be the last byte of the last block;
// if 1 <= p <= len(last block), remove the last p bytes. Returns
// ErrInvalidPadding if the trailing bytes are not a syntactically valid pad.
func StripPKCS7(blocks [][]byte) ([]byte, error) {
	var plain []byte
	for _, b := range blocks {
		plain = append(plain, b...)
	}

	if len(plain) == 0 {
		return nil, ErrInvalidPadding
	}

	pad := int(plain[len(plain)-1])
	if pad < 1 || pad > len(blocks[len(blocks)-1]) {
		return nil, ErrInvalidPadding
	}

	for i := len(plain) - pad; i < len(plain); i++ {
		if plain[i] != byte(pad) {
			return nil, ErrInvalidPadding
		}
	}

	return plain[:len(plain)-pad], nil
}
