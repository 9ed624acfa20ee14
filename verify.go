package sigcheck

import (
	"context"
	"errors"
	"time"
)

// VerifyResult carries the side-channel outputs of a successful (or
// partially successful) verification: expiry/revocation status and,
// on request, an owned copy of the signer key.
type VerifyResult struct {
	Expired   bool
	Revoked   bool
	ExpiresAt int64
	SignerKey *PublicKey
}

// verifyPrimitive is the Primitive Verify Wrapper (spec.md §4.3): it
// encodes the finalized digest as the big-integer shape the signer's
// algorithm expects, then invokes the PK primitive.
func verifyPrimitive(ctx context.Context, pk PKVerifier, k *PublicKey, s *Signature, digest []byte) error {
	digestMPI, err := encodeDigestMPI(s.PubKeyAlgo, s.DigestAlgo, digest, k.groupOrderBits())
	if err != nil {
		return err
	}
	if err := pk.Verify(ctx, k, s.PubKeyAlgo, s.MPIs, digestMPI); err != nil {
		if IsUnsupportedAlgorithm(err) {
			return err
		}
		return newVerifyError("verify-primitive", ErrBadSignature, err.Error()).withKeyID(k.KeyID).withSigClass(s.Class)
	}
	return nil
}

// IsUnsupportedAlgorithm reports whether err (or a wrapped cause) is
// ErrUnsupportedAlgorithm.
func IsUnsupportedAlgorithm(err error) bool {
	return errors.Is(err, ErrUnsupportedAlgorithm)
}

// runVerifyPipeline runs the C2→C1→C3 pipeline shared by the data-signature
// verifier, the key-signature dispatcher, and the designated-revoker
// resolver (the back-signature checker skips metadata and calls
// finalizeSignatureHash and verifyPrimitive itself): validate metadata, finalize the hash,
// run the crypto primitive, and fold in the unknown-critical-subpacket
// downgrade (spec.md §7).
func runVerifyPipeline(ctx context.Context, opts *Options, sink StatusSink, pk PKVerifier, h HashContext, signer *PublicKey, s *Signature, now time.Time) (expired, revoked bool, err error) {
	expired, revoked, err = validateMetadata(ctx, opts, sink, signer, s, now)
	if err != nil {
		return expired, revoked, err
	}

	if opts.isWeakDigest(s.DigestAlgo) {
		return expired, revoked, newVerifyError("verify-pipeline", ErrUnsupportedAlgorithm, "digest algorithm rejected by weak-digest policy").withSigClass(s.Class)
	}

	digest := finalizeSignatureHash(h, s)

	if err := verifyPrimitive(ctx, pk, signer, s, digest); err != nil {
		return expired, revoked, err
	}

	if s.Flags.UnknownCritical {
		opts.logger().Info(ctx, "assuming bad signature due to an unknown critical bit", "key", keyStr(signer))
		return expired, revoked, newVerifyError("verify-pipeline", ErrBadSignature, "unknown critical subpacket").withKeyID(signer.KeyID).withSigClass(s.Class)
	}

	return expired, revoked, nil
}

// VerifyDataSignature is the Data-Signature Verifier (spec.md §4.6): the
// top-level entry point for detached or attached data signatures (sig_class
// 0x00/0x01). h must already have hashed the signed payload; this function
// appends the signature's own trailer, looks up the signer key, and runs
// the full metadata+crypto pipeline.
func VerifyDataSignature(ctx context.Context, s *Signature, h HashContext, db KeyDB, pk PKVerifier, sink StatusSink, opts ...VerifyOption) (*VerifyResult, error) {
	return verifyDataSignatureAt(ctx, s, h, db, pk, sink, time.Now(), NewOptions(opts...))
}

func verifyDataSignatureAt(ctx context.Context, s *Signature, h HashContext, db KeyDB, pk PKVerifier, sink StatusSink, now time.Time, opts *Options) (*VerifyResult, error) {
	if !s.PubKeyAlgo.Supported() {
		return nil, newVerifyError("verify-data-signature", ErrUnsupportedAlgorithm, s.PubKeyAlgo.String()).withSigClass(s.Class)
	}
	if !s.DigestAlgo.Supported() {
		return nil, newVerifyError("verify-data-signature", ErrUnsupportedAlgorithm, s.DigestAlgo.String()).withSigClass(s.Class)
	}
	if h.Algo() != s.DigestAlgo {
		return nil, newVerifyError("verify-data-signature", ErrGeneral, "hash context digest algorithm does not match signature")
	}

	k, err := db.Lookup(ctx, s.IssuerKeyID)
	if err != nil {
		return nil, newVerifyError("verify-data-signature", ErrNoPublicKey, "").withKeyID(s.IssuerKeyID)
	}
	if !k.IsPrimary && !k.IsValid {
		return nil, newVerifyError("verify-data-signature", ErrBadPublicKey, "signer subkey is not valid").withKeyID(k.KeyID)
	}

	result := &VerifyResult{ExpiresAt: k.ExpiresAt}

	if cacheHit(opts, s) {
		expired, revoked, _ := validateMetadata(ctx, opts, sink, k, s, now)
		result.Expired, result.Revoked = expired, revoked
		if !s.Flags.Valid {
			return result, newVerifyError("verify-data-signature", ErrBadSignature, "cached").withKeyID(k.KeyID).withSigClass(s.Class)
		}
		result.SignerKey = db.Copy(k)
		return result, nil
	}

	expired, revoked, err := runVerifyPipeline(ctx, opts, sink, pk, h, k, s, now)
	cacheSigResult(s, err)
	result.Expired, result.Revoked = expired, revoked
	if err != nil {
		return result, err
	}

	if !k.IsPrimary {
		switch s.Flags.BackSig {
		case BackSigValid:
			// cross-certified; proceed.
		case BackSigInvalid:
			return result, newVerifyError("verify-data-signature", ErrGeneral, "subkey cross-certification is invalid").withKeyID(k.KeyID)
		default:
			if opts.RequireCrossCert {
				return result, newVerifyError("verify-data-signature", ErrGeneral, "subkey lacks a valid cross-certification").withKeyID(k.KeyID)
			}
			opts.logger().Warn(ctx, "signing subkey has no valid cross-certification", "key", keyStr(k))
		}
	}

	if s.Class.IsDataSignature() {
		emitSigID(ctx, sink, s)
	}

	result.SignerKey = db.Copy(k)
	return result, nil
}

// VerifySimple is a convenience wrapper over VerifyDataSignature that
// mirrors the original implementation's check_signature entry point: it
// discards expiry/revocation detail and copies the signer key into retPK
// on success, when retPK is non-nil.
func VerifySimple(ctx context.Context, s *Signature, h HashContext, db KeyDB, pk PKVerifier, sink StatusSink, retPK *PublicKey, opts ...VerifyOption) error {
	result, err := VerifyDataSignature(ctx, s, h, db, pk, sink, opts...)
	if err != nil {
		return err
	}
	if retPK != nil && result.SignerKey != nil {
		*retPK = *result.SignerKey
	}
	return nil
}
