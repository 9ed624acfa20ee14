package sigcheck

import (
	"context"
	"time"
)

// KeySigResult carries the side-channel outputs of verifying a key-over-key
// signature.
type KeySigResult struct {
	IsSelfSig bool
	Expired   bool
	ExpiresAt int64
	SignerKey *PublicKey
}

// VerifyKeySignature is the Key-Signature Dispatcher (spec.md §4.7): it
// selects the hashing recipe and the signer key for a signature packet
// found inside a keyblock, based on the signature's class. node is the
// index of the signature packet within root.Nodes. checkPK, if non-nil, is
// preferred as the signer for UID certifications that are not self-sigs
// (the caller's "this key is asserted good" override).
func VerifyKeySignature(ctx context.Context, root *KeyBlock, node int, checkPK *PublicKey, db KeyDB, pk PKVerifier, h HashFactory, sink StatusSink, opts ...VerifyOption) (*KeySigResult, error) {
	return verifyKeySignatureAt(ctx, root, node, checkPK, db, pk, h, sink, time.Now(), NewOptions(opts...))
}

// HashFactory opens a fresh HashContext for the given digest algorithm, the
// way gcry_md_open does for the original implementation. Each dispatch
// branch below needs its own hash context seeded with a different prefix of
// keyblock bytes.
type HashFactory interface {
	New(algo DigestAlgo) (HashContext, error)
}

func verifyKeySignatureAt(ctx context.Context, root *KeyBlock, node int, checkPK *PublicKey, db KeyDB, pk PKVerifier, hf HashFactory, sink StatusSink, now time.Time, opts *Options) (*KeySigResult, error) {
	sigNode := root.Nodes[node]
	if sigNode.Kind != NodeSignature {
		return nil, newVerifyError("verify-key-signature", ErrGeneral, "node is not a signature")
	}
	s := sigNode.Signature
	p := root.Primary
	result := &KeySigResult{}

	if !s.PubKeyAlgo.Supported() {
		return result, newVerifyError("verify-key-signature", ErrUnsupportedAlgorithm, s.PubKeyAlgo.String()).withSigClass(s.Class)
	}
	if !s.DigestAlgo.Supported() {
		return result, newVerifyError("verify-key-signature", ErrUnsupportedAlgorithm, s.DigestAlgo.String()).withSigClass(s.Class)
	}

	if cacheHit(opts, s) {
		result.IsSelfSig = s.IssuerKeyID == p.KeyID
		// Known source bug (spec.md §9): metadata is checked against the
		// primary key P even for a non-self-sig cache hit, unless the
		// caller opted into the fix.
		metaKey := p
		if opts.FixCacheFastPathSigner && !result.IsSelfSig {
			if signer, err := resolveCachedSigner(ctx, s, checkPK, db); err == nil {
				metaKey = signer
			}
		}
		expired, _, err := validateMetadata(ctx, opts, sink, metaKey, s, now)
		result.Expired, result.ExpiresAt = expired, metaKey.ExpiresAt
		if err != nil {
			return result, err
		}
		if !s.Flags.Valid {
			return result, newVerifyError("verify-key-signature", ErrBadSignature, "cached").withKeyID(metaKey.KeyID).withSigClass(s.Class)
		}
		return result, nil
	}

	switch s.Class {
	case SigClassKeyRevoke:
		if s.IssuerKeyID != p.KeyID {
			err := checkRevocationKeys(ctx, opts, sink, db, pk, hf, p, s, now)
			return result, err
		}
		result.IsSelfSig = true
		h, err := hf.New(s.DigestAlgo)
		if err != nil {
			return result, newVerifyError("verify-key-signature", ErrUnsupportedAlgorithm, err.Error())
		}
		hashPublicKey(h, keyBody(p))
		return finishKeySig(ctx, opts, sink, db, pk, h, p, s, now, result)

	case SigClassSubkeyRevoke, SigClassSubkeyBind:
		si := root.FindPrevNode(node, NodeSubkey)
		if si < 0 {
			return result, newVerifyError("verify-key-signature", ErrSigClass, "no subkey for subkey binding/revocation").withSigClass(s.Class)
		}
		sub := root.Nodes[si].PublicKey
		if s.Class == SigClassSubkeyBind {
			result.IsSelfSig = s.IssuerKeyID == p.KeyID
		}
		h, err := hf.New(s.DigestAlgo)
		if err != nil {
			return result, newVerifyError("verify-key-signature", ErrUnsupportedAlgorithm, err.Error())
		}
		hashPublicKey(h, keyBody(p))
		hashPublicKey(h, keyBody(sub))
		return finishKeySig(ctx, opts, sink, db, pk, h, p, s, now, result)

	case SigClassDirectKey:
		h, err := hf.New(s.DigestAlgo)
		if err != nil {
			return result, newVerifyError("verify-key-signature", ErrUnsupportedAlgorithm, err.Error())
		}
		hashPublicKey(h, keyBody(p))
		return finishKeySig(ctx, opts, sink, db, pk, h, p, s, now, result)

	default: // UID certifications
		ui := -1
		for j := node - 1; j >= 0; j-- {
			if k := root.Nodes[j].Kind; k == NodeUserID || k == NodeUserAttribute {
				ui = j
				break
			}
		}
		if ui < 0 {
			return result, newVerifyError("verify-key-signature", ErrSigClass, "no user id for key signature").withSigClass(s.Class)
		}
		un := root.Nodes[ui]
		h, err := hf.New(s.DigestAlgo)
		if err != nil {
			return result, newVerifyError("verify-key-signature", ErrUnsupportedAlgorithm, err.Error())
		}
		hashPublicKey(h, keyBody(p))
		body, isAttr := un.UserID, false
		if un.Kind == NodeUserAttribute {
			body, isAttr = un.UserAttr, true
		}
		hashUserID(h, s.Version, isAttr, body)

		var signer *PublicKey
		switch {
		case s.IssuerKeyID == p.KeyID:
			result.IsSelfSig = true
			signer = p
		case checkPK != nil:
			signer = checkPK
		default:
			looked, err := db.Lookup(ctx, s.IssuerKeyID)
			if err != nil {
				cacheSigResult(s, err)
				return result, newVerifyError("verify-key-signature", ErrNoPublicKey, "").withKeyID(s.IssuerKeyID)
			}
			if opts.StrictUIDSigners && !keyInBlock(root, looked) {
				err := newVerifyError("verify-key-signature", ErrNoPublicKey, "signer not present in keyblock").withKeyID(s.IssuerKeyID)
				cacheSigResult(s, err)
				return result, err
			}
			signer = looked
		}
		return finishKeySig(ctx, opts, sink, db, pk, h, signer, s, now, result)
	}
}

func finishKeySig(ctx context.Context, opts *Options, sink StatusSink, db KeyDB, pkv PKVerifier, h HashContext, signer *PublicKey, s *Signature, now time.Time, result *KeySigResult) (*KeySigResult, error) {
	expired, _, err := runVerifyPipeline(ctx, opts, sink, pkv, h, signer, s, now)
	cacheSigResult(s, err)
	result.Expired = expired
	result.ExpiresAt = signer.ExpiresAt
	if err != nil {
		return result, err
	}
	result.SignerKey = db.Copy(signer)
	return result, nil
}

// resolveCachedSigner best-effort resolves the actual signer key for a
// cached non-self-sig, used only when FixCacheFastPathSigner is set.
func resolveCachedSigner(ctx context.Context, s *Signature, checkPK *PublicKey, db KeyDB) (*PublicKey, error) {
	if checkPK != nil {
		return checkPK, nil
	}
	return db.Lookup(ctx, s.IssuerKeyID)
}

func keyInBlock(root *KeyBlock, k *PublicKey) bool {
	for _, n := range root.Nodes {
		if n.Kind == NodePrimaryKey || n.Kind == NodeSubkey {
			if n.PublicKey != nil && n.PublicKey.KeyID == k.KeyID {
				return true
			}
		}
	}
	return false
}

// keyBody returns the packet parser's serialized public key body, which this
// core does not itself produce (spec.md §1 scope: packet parsing is an
// external collaborator). It is read from PublicKey.WireBody, which
// embedders fill in from their parser and tests set to fixed fixture bytes.
func keyBody(k *PublicKey) []byte {
	if k == nil {
		return nil
	}
	return k.WireBody
}
