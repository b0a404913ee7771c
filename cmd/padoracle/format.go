package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
)

// loadCiphertext reads the ciphertext at path, decoding it according to
// format: "b64", "b64_urlsafe", "hex", or "raw" (no decoding).
func loadCiphertext(path, format string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	switch format {
	case "b64":
		return base64.StdEncoding.DecodeString(trimTrailingNewline(raw))
	case "b64_urlsafe":
		return base64.URLEncoding.DecodeString(trimTrailingNewline(raw))
	case "hex":
		return hex.DecodeString(trimTrailingNewline(raw))
	case "raw":
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown ciphertext format %q", format)
	}
}

func trimTrailingNewline(b []byte) string {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return string(b)
}
