package sigcheck

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalizeSignatureHash_V4EmptyHashedArea(t *testing.T) {
	s := &Signature{
		Version:    4,
		Class:      SigClassBinary,
		PubKeyAlgo: PubKeyAlgoRSA,
		DigestAlgo: DigestAlgoSHA256,
	}
	h := newFakeHashContext(DigestAlgoSHA256)
	finalizeSignatureHash(h, s)

	// version, class, pubkey_algo, digest_algo, 2 zero length bytes, then
	// a 6-byte trailer with n=6.
	want := []byte{4, byte(SigClassBinary), byte(PubKeyAlgoRSA), byte(DigestAlgoSHA256), 0, 0, 4, 0xFF, 0, 0, 0, 6}
	require.True(t, bytes.Equal(h.buf, want), "got % x want % x", h.buf, want)
}

func TestFinalizeSignatureHash_V4WithHashedArea(t *testing.T) {
	s := &Signature{
		Version:    4,
		Class:      SigClassBinary,
		PubKeyAlgo: PubKeyAlgoRSA,
		DigestAlgo: DigestAlgoSHA256,
		HashedArea: []byte{0x01, 0x02, 0x03},
	}
	h := newFakeHashContext(DigestAlgoSHA256)
	finalizeSignatureHash(h, s)

	n := 3 + 6
	want := []byte{4, byte(SigClassBinary), byte(PubKeyAlgoRSA), byte(DigestAlgoSHA256), 0, 3, 0x01, 0x02, 0x03, 4, 0xFF, 0, 0, 0, byte(n)}
	require.True(t, bytes.Equal(h.buf, want), "got % x want % x", h.buf, want)
}

func TestFinalizeSignatureHash_V3(t *testing.T) {
	s := &Signature{
		Version:   3,
		Class:     SigClassBinary,
		Timestamp: 0x01020304,
	}
	h := newFakeHashContext(DigestAlgoSHA256)
	finalizeSignatureHash(h, s)

	want := []byte{byte(SigClassBinary), 0x01, 0x02, 0x03, 0x04}
	require.True(t, bytes.Equal(h.buf, want), "got % x want % x", h.buf, want)
}

func TestHashUserID_V4UsesFraming(t *testing.T) {
	h := newFakeHashContext(DigestAlgoSHA256)
	hashUserID(h, 4, false, []byte("alice@example.com"))
	require.Equal(t, byte(0xB4), h.buf[0])
}

func TestHashUserID_V3NoFraming(t *testing.T) {
	h := newFakeHashContext(DigestAlgoSHA256)
	body := []byte("alice@example.com")
	hashUserID(h, 3, false, body)
	require.True(t, bytes.Equal(h.buf, body))
}

func TestHashUserID_UserAttributeTag(t *testing.T) {
	h := newFakeHashContext(DigestAlgoSHA256)
	hashUserID(h, 4, true, []byte{0x01, 0x02})
	require.Equal(t, byte(0xD1), h.buf[0])
}

func TestHashPublicKey_Framing(t *testing.T) {
	h := newFakeHashContext(DigestAlgoSHA256)
	body := []byte{0xAA, 0xBB, 0xCC}
	hashPublicKey(h, body)
	require.Equal(t, byte(0x99), h.buf[0])
	require.Equal(t, byte(0), h.buf[1])
	require.Equal(t, byte(3), h.buf[2])
	require.True(t, bytes.Equal(h.buf[3:], body))
}
