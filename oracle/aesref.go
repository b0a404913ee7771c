package oracle

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/dkowalski/padoracle/block"
)

// AESCBCReference is an in-process AES-CBC encrypt/validate pair used by the
// demo HTTP service and by tests that need a real padding oracle without a
// network hop. It holds the key the attack is mounted against; nothing in
// the solver ever has access to it.
type AESCBCReference struct {
	cipher cipher.Block
}

// NewAESCBCReference builds a reference oracle around a freshly supplied AES
// key (16, 24, or 32 bytes).
func NewAESCBCReference(key []byte) (*AESCBCReference, error) {
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("oracle: initializing AES cipher: %w", err)
	}
	return &AESCBCReference{cipher: c}, nil
}

// Encrypt returns iv‖ciphertext for the given plaintext, PKCS#7-padded to the
// cipher's block size.
func (a *AESCBCReference) Encrypt(iv, plainText []byte) ([]byte, error) {
	blockSize := a.cipher.BlockSize()
	if len(iv) != blockSize {
		return nil, fmt.Errorf("oracle: iv length %d != block size %d", len(iv), blockSize)
	}

	padded := block.PadPKCS7(plainText, blockSize)
	mode := cipher.NewCBCEncrypter(a.cipher, iv)
	cipherText := make([]byte, len(padded))
	mode.CryptBlocks(cipherText, padded)

	out := make([]byte, 0, blockSize+len(cipherText))
	out = append(out, iv...)
	out = append(out, cipherText...)
	return out, nil
}

// decrypt decrypts iv‖cipherText (no padding check) and returns the raw
// plaintext, still carrying whatever padding bytes were present.
func (a *AESCBCReference) decrypt(ivAndCipherText []byte) ([]byte, error) {
	blockSize := a.cipher.BlockSize()
	if len(ivAndCipherText) < 2*blockSize || len(ivAndCipherText)%blockSize != 0 {
		return nil, fmt.Errorf("oracle: malformed ciphertext: length %d", len(ivAndCipherText))
	}

	iv := ivAndCipherText[:blockSize]
	cipherText := ivAndCipherText[blockSize:]

	mode := cipher.NewCBCDecrypter(a.cipher, iv)
	plainText := make([]byte, len(cipherText))
	mode.CryptBlocks(plainText, cipherText)

	return plainText, nil
}

// Check implements Oracle by decrypting prev‖target and reporting whether
// the result carries valid PKCS#7 padding. This is the vulnerable endpoint
// under attack: it deliberately reveals only a single bit (valid/invalid),
// never the decrypted bytes.
func (a *AESCBCReference) Check(_ context.Context, prev, target []byte) (bool, error) {
	plain, err := a.decrypt(append(block.Copy(prev), target...))
	if err != nil {
		return false, err
	}
	_, err = block.StripPKCS7([][]byte{plain})
	return err == nil, nil
}

// Validate decrypts a full iv‖ciphertext message and reports whether its
// final block carries valid PKCS#7 padding, without revealing the plaintext.
// Used directly by the demo HTTP service's /validate endpoint.
func (a *AESCBCReference) Validate(ivAndCipherText []byte) (bool, error) {
	plain, err := a.decrypt(ivAndCipherText)
	if err != nil {
		return false, err
	}
	blockSize := a.cipher.BlockSize()
	_, err = block.StripPKCS7([][]byte{plain[len(plain)-blockSize:]})
	return err == nil, nil
}
