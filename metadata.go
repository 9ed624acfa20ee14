package sigcheck

import (
	"context"
	"fmt"
	"time"
)

// validateMetadata is the Metadata Validator (spec.md §4.2): timestamp
// sanity, expiry, and revocation. It never fails on expiry or revocation —
// those are out-of-band signals surfaced through expired/revoked and a
// KeyExpired status event — and fails only on a genuine time conflict.
func validateMetadata(ctx context.Context, opts *Options, sink StatusSink, k *PublicKey, s *Signature, now time.Time) (expired, revoked bool, err error) {
	log := opts.logger()
	nowUnix := now.Unix()

	if k.CreatedAt > s.Timestamp {
		d := k.CreatedAt - s.Timestamp
		log.Info(ctx, fmt.Sprintf("public key is %s newer than the signature", clockSkewQuantity(d)), "key", keyStr(k))
		if !opts.IgnoreTimeConflict {
			return false, false, newVerifyError("validate-metadata", ErrTimeConflict, "public key newer than signature").withKeyID(k.KeyID)
		}
	}

	if k.CreatedAt > nowUnix {
		d := k.CreatedAt - nowUnix
		log.Info(ctx, fmt.Sprintf("key was created %s in the future (time warp or clock problem)", clockSkewQuantity(d)), "key", keyStr(k))
		if !opts.IgnoreTimeConflict {
			return false, false, newVerifyError("validate-metadata", ErrTimeConflict, "key created in the future").withKeyID(k.KeyID)
		}
	}

	if k.HasExpired || (k.ExpiresAt > 0 && k.ExpiresAt < nowUnix) {
		if opts.Verbose {
			log.Debug(ctx, "signature key expired", "key", keyStr(k), "expires_at", k.ExpiresAt)
		}
		emitStatus(ctx, sink, StatusEvent{Kind: StatusKeyExpired, KeyID: k.KeyID, Timestamp: k.ExpiresAt})
		expired = true
	}

	if k.IsRevoked {
		if opts.Verbose {
			log.Debug(ctx, "signature key has been revoked", "key", keyStr(k))
		}
		revoked = true
	}

	return expired, revoked, nil
}

// clockSkewQuantity reproduces the original implementation's singular/plural
// seconds-vs-days phrasing: deltas under 86400 seconds are reported in
// seconds, everything else in whole days.
func clockSkewQuantity(delta int64) string {
	if delta < 86400 {
		if delta == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", delta)
	}
	d := delta / 86400
	if d == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", d)
}

func keyStr(k *PublicKey) string {
	if k == nil {
		return "?"
	}
	return fmt.Sprintf("%016X", k.KeyID)
}
