// Package sigcheck implements the OpenPGP signature verification core of a
// public-key cryptography suite: given a signature packet, a hash context
// already seeded with the signed data, and a local key database, it decides
// whether a signature is cryptographically valid and contextually
// trustworthy, and reports as a side effect whether the signing key is
// expired or revoked.
//
// The package does not parse OpenPGP packets, perform the low-level
// public-key math, compute hashes, or manage a key database — those are
// external collaborators supplied by the caller through the HashContext,
// KeyDB, PKVerifier, and StatusSink interfaces (see keydb.go, status.go).
// This keeps the core testable in isolation from any particular key-storage
// or cryptographic backend.
//
// # Quick start
//
// Verifying a detached data signature:
//
//	h := myHashContext // already fed the signed message bytes
//	_, err := sigcheck.VerifyDataSignature(ctx, sig, h, db, verifier, sink,
//	    sigcheck.WithRequireCrossCert(true),
//	)
//	if err != nil {
//	    var verr *sigcheck.VerifyError
//	    if errors.As(err, &verr) {
//	        // verr.Diagnostic carries a human-readable reason
//	    }
//	}
//
// Verifying every signature in a keyblock (self-sigs, bindings,
// revocations, user-id certifications):
//
//	for i, pkt := range keyblock.Nodes {
//	    if pkt.Kind != sigcheck.NodeSignature {
//	        continue
//	    }
//	    _, err := sigcheck.VerifyKeySignature(ctx, keyblock, i, nil, db, verifier, hashes, sink)
//	}
//
// # Caching
//
// Every Signature carries a Flags field the core uses to memoize
// verification results (see cache.go). Disable it per-call with
// WithNoSigCache for callers that mutate signatures between checks.
package sigcheck
