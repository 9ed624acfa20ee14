package sigcheck

import (
	"context"
	"encoding/binary"
	"time"
)

// revokerVisitSet tracks designated-revoker fingerprints currently being
// resolved, per spec.md §9's redesign of the original process-wide static
// "busy" guard into a per-call visit-set keyed by key fingerprint. The set
// must be non-nil, since enter writes to it; checkRevocationKeys builds a
// fresh one for each top-level call.
type revokerVisitSet map[string]struct{}

// newRevokerVisitSet returns an empty visit-set.
func newRevokerVisitSet() revokerVisitSet {
	return make(revokerVisitSet)
}

func (v revokerVisitSet) visiting(fpr []byte) bool {
	_, ok := v[string(fpr)]
	return ok
}

func (v revokerVisitSet) enter(fpr []byte) {
	v[string(fpr)] = struct{}{}
}

func (v revokerVisitSet) leave(fpr []byte) {
	delete(v, string(fpr))
}

// checkRevocationKeys is the Designated-Revoker Resolver (spec.md §4.8): P
// is the key allegedly revoked, s is the 0x20 revocation signature whose
// issuer is not P itself. It checks whether s's issuer matches one of P's
// designated revokers and, if so, verifies the signature using that
// revoker as signer.
//
// Policy preserved from the source: a revocation is considered valid even
// if the revoker itself is later revoked — only the signature's
// cryptographic validity matters here.
func checkRevocationKeys(ctx context.Context, opts *Options, sink StatusSink, db KeyDB, pkv PKVerifier, hf HashFactory, p *PublicKey, s *Signature, now time.Time) error {
	return checkRevocationKeysVisit(ctx, opts, sink, db, pkv, hf, p, s, now, newRevokerVisitSet())
}

func checkRevocationKeysVisit(ctx context.Context, opts *Options, sink StatusSink, db KeyDB, pkv PKVerifier, hf HashFactory, p *PublicKey, s *Signature, now time.Time, visited revokerVisitSet) error {
	if visited.visiting(p.Fingerprint) {
		p.DontCache = true
		return newVerifyError("check-revocation-keys", ErrGeneral, "designated-revoker recursion detected").withKeyID(p.KeyID).withSigClass(s.Class)
	}
	visited.enter(p.Fingerprint)
	defer visited.leave(p.Fingerprint)

	for _, r := range p.DesignatedRevokers {
		if keyIDFromFingerprint(r.Fingerprint) != s.IssuerKeyID {
			continue
		}

		revoker, err := db.LookupFingerprint(ctx, r.Fingerprint)
		if err != nil {
			return newVerifyError("check-revocation-keys", ErrNoPublicKey, "designated revoker key not found").withKeyID(s.IssuerKeyID)
		}

		h, err := hf.New(s.DigestAlgo)
		if err != nil {
			return newVerifyError("check-revocation-keys", ErrUnsupportedAlgorithm, err.Error())
		}
		hashPublicKey(h, keyBody(p))

		_, _, err = runVerifyPipeline(ctx, opts, sink, pkv, h, revoker, s, now)
		cacheSigResult(s, err)
		return err
	}

	return newVerifyError("check-revocation-keys", ErrGeneral, "issuer is not a designated revoker").withKeyID(s.IssuerKeyID).withSigClass(s.Class)
}

// keyIDFromFingerprint derives a 64-bit key id from a key fingerprint the
// way keyid_from_fingerprint does: the low 8 bytes of a v4 (20-byte SHA-1)
// fingerprint, big-endian.
func keyIDFromFingerprint(fpr []byte) uint64 {
	if len(fpr) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(fpr[len(fpr)-8:])
}
