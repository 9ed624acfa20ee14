package sigcheck

import (
	"context"
	"time"
)

// CheckBackSig is the Cross-Certification Checker (spec.md §4.9): it
// validates a subkey's back-signature (0x19) over the primary key,
// confirming the subkey itself asserts its binding and preventing a stolen
// subkey from being claimed by an unrelated primary key.
//
// Unlike the other key-signature checks, a back-signature has no expiry
// semantics: even if its hashed area encodes an expiration subpacket, it is
// ignored here.
func CheckBackSig(ctx context.Context, p, sub *PublicKey, backsig *Signature, pkv PKVerifier, hf HashFactory, opts ...VerifyOption) error {
	return checkBackSigAt(ctx, p, sub, backsig, pkv, hf, time.Now(), NewOptions(opts...))
}

func checkBackSigAt(ctx context.Context, p, sub *PublicKey, backsig *Signature, pkv PKVerifier, hf HashFactory, now time.Time, opts *Options) error {
	if !backsig.DigestAlgo.Supported() {
		return newVerifyError("check-backsig", ErrUnsupportedAlgorithm, backsig.DigestAlgo.String()).withSigClass(backsig.Class)
	}

	if cacheHit(opts, backsig) {
		if backsig.Flags.Valid {
			return nil
		}
		return newVerifyError("check-backsig", ErrBadSignature, "cached").withKeyID(sub.KeyID)
	}

	h, err := hf.New(backsig.DigestAlgo)
	if err != nil {
		return newVerifyError("check-backsig", ErrUnsupportedAlgorithm, err.Error())
	}
	hashPublicKey(h, keyBody(p))
	hashPublicKey(h, keyBody(sub))

	digest := finalizeSignatureHash(h, backsig)
	err = verifyPrimitive(ctx, pkv, sub, backsig, digest)
	if err == nil && backsig.Flags.UnknownCritical {
		err = newVerifyError("check-backsig", ErrBadSignature, "unknown critical subpacket").withKeyID(sub.KeyID).withSigClass(backsig.Class)
	}
	cacheSigResult(backsig, err)
	return err
}
