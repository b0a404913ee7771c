package oracle

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestReference(t *testing.T) (*AESCBCReference, []byte) {
	t.Helper()
	key := make([]byte, 16)
	_, err := rand.Read(key)
	require.NoError(t, err)
	ref, err := NewAESCBCReference(key)
	require.NoError(t, err)
	return ref, key
}

func TestAESCBCReference_EncryptThenValidate(t *testing.T) {
	ref, _ := newTestReference(t)
	iv := make([]byte, 16)
	ciphertext, err := ref.Encrypt(iv, []byte("some plaintext"))
	require.NoError(t, err)

	valid, err := ref.Validate(ciphertext)
	require.NoError(t, err)
	require.True(t, valid)
}

func TestAESCBCReference_ValidateRejectsTamperedPadding(t *testing.T) {
	ref, _ := newTestReference(t)
	iv := make([]byte, 16)
	ciphertext, err := ref.Encrypt(iv, []byte("some plaintext"))
	require.NoError(t, err)

	ciphertext[len(ciphertext)-1] ^= 0xFF

	valid, err := ref.Validate(ciphertext)
	require.NoError(t, err)
	require.False(t, valid)
}

func TestAESCBCReference_CheckImplementsOracleInterface(t *testing.T) {
	ref, _ := newTestReference(t)
	iv := make([]byte, 16)
	ciphertext, err := ref.Encrypt(iv, []byte("check me"))
	require.NoError(t, err)

	prev := ciphertext[:16]
	target := ciphertext[16:32]

	valid, err := ref.Check(context.Background(), prev, target)
	require.NoError(t, err)
	require.True(t, valid)

	tamperedPrev := append([]byte{}, prev...)
	tamperedPrev[len(tamperedPrev)-1] ^= 0xFF
	valid, err = ref.Check(context.Background(), tamperedPrev, target)
	require.NoError(t, err)
	require.False(t, valid)
}

func TestAESCBCReference_EncryptRejectsWrongIVSize(t *testing.T) {
	ref, _ := newTestReference(t)
	_, err := ref.Encrypt(make([]byte, 8), []byte("x"))
	require.Error(t, err)
}
