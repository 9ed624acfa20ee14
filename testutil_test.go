package sigcheck

import (
	"context"
	"crypto/sha256"
)

// fakeHashContext is a deterministic HashContext test double: it simply
// accumulates written bytes and returns their full SHA-256 digest, whatever
// algo it was opened for. Real callers wire
// an actual hash library (e.g. crypto/sha256, golang.org/x/crypto/ripemd160);
// tests only need a stable, inspectable stand-in.
type fakeHashContext struct {
	algo DigestAlgo
	buf  []byte
}

func newFakeHashContext(algo DigestAlgo) *fakeHashContext {
	return &fakeHashContext{algo: algo}
}

func (f *fakeHashContext) Algo() DigestAlgo { return f.algo }

func (f *fakeHashContext) Write(p []byte) (int, error) {
	f.buf = append(f.buf, p...)
	return len(p), nil
}

func (f *fakeHashContext) Sum() []byte {
	sum := sha256.Sum256(f.buf)
	return sum[:]
}

// fakeHashFactory opens fakeHashContexts, recording every open call for
// cache fast-path assertions (pk_verify / hash should not run again).
type fakeHashFactory struct {
	opens int
}

func (f *fakeHashFactory) New(algo DigestAlgo) (HashContext, error) {
	f.opens++
	return newFakeHashContext(algo), nil
}

// fakePKVerifier accepts or rejects based on a byte-equality rule against a
// per-key "good digest" map, and counts invocations so tests can assert the
// result cache actually skipped the crypto primitive.
type fakePKVerifier struct {
	calls   int
	goodFor map[uint64][]byte // keyID -> digest MPI bytes that verify
	fail    bool
}

func newFakePKVerifier() *fakePKVerifier {
	return &fakePKVerifier{goodFor: make(map[uint64][]byte)}
}

func (f *fakePKVerifier) approve(keyID uint64, digestBytes []byte) {
	f.goodFor[keyID] = digestBytes
}

func (f *fakePKVerifier) Verify(_ context.Context, key *PublicKey, _ PubKeyAlgo, _ []*MPI, digestMPI *MPI) error {
	f.calls++
	if f.fail {
		return ErrBadSignature
	}
	want, ok := f.goodFor[key.KeyID]
	if !ok {
		return ErrBadSignature
	}
	got := digestMPI.Bytes
	if len(got) != len(want) {
		return ErrBadSignature
	}
	for i := range got {
		if got[i] != want[i] {
			return ErrBadSignature
		}
	}
	return nil
}

// digestFor computes the same digest the verify pipeline would produce for
// s hashed after prefix, letting tests precompute the "good" value to
// register with fakePKVerifier.approve.
func digestFor(algo DigestAlgo, prefix []byte, s *Signature) []byte {
	h := newFakeHashContext(algo)
	_, _ = h.Write(prefix)
	digest := finalizeSignatureHash(h, s)
	mpi, err := encodeDigestMPI(s.PubKeyAlgo, s.DigestAlgo, digest, 0)
	if err != nil {
		panic(err)
	}
	return mpi.Bytes
}

func testFingerprint(b byte) []byte {
	fpr := make([]byte, 20)
	fpr[19] = b
	return fpr
}

func testKeyID(fpr []byte) uint64 {
	return keyIDFromFingerprint(fpr)
}
