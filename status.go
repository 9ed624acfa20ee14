package sigcheck

import "context"

// StatusKind names one of the status-fd style events this core emits as a
// side effect of verification, mirroring the event names GnuPG's
// status-codes.h defines (SIG_ID, KEYEXPIRED, and friends). Localizing and
// presenting these to a human is an external collaborator's job (spec.md
// §6); this core only classifies and emits them. Of the kinds below, this
// package emits only StatusSigID and StatusKeyExpired; the others are not
// emitted by any code in it.
type StatusKind int

const (
	// StatusSigID reports the computed SIG-ID for a good data signature
	// (C5).
	StatusSigID StatusKind = iota
	// StatusKeyExpired reports that the signer key is expired at
	// verification time (flagged expired, or its expiry is before now).
	StatusKeyExpired
	// StatusKeyRevoked reports that the signer key was revoked.
	StatusKeyRevoked
	// StatusBadSignature reports that a signature failed cryptographic
	// verification.
	StatusBadSignature
	// StatusGoodSignature reports that a signature passed cryptographic
	// verification and its metadata checks.
	StatusGoodSignature
)

// String implements fmt.Stringer for diagnostics.
func (k StatusKind) String() string {
	switch k {
	case StatusSigID:
		return "SIG_ID"
	case StatusKeyExpired:
		return "KEYEXPIRED"
	case StatusKeyRevoked:
		return "KEYREVOKED"
	case StatusBadSignature:
		return "BADSIG"
	case StatusGoodSignature:
		return "GOODSIG"
	default:
		return "UNKNOWN"
	}
}

// StatusEvent is one emitted status notification.
type StatusEvent struct {
	Kind  StatusKind
	KeyID uint64
	// SigID carries the radix64 SIG-ID string (StatusSigID only).
	SigID string
	// Timestamp carries the signature creation time, in Unix seconds, for
	// StatusSigID (paired with SigID per the "SIG_ID <b64> <iso_ts>
	// <unix_ts>" wire line) and the key expiry time for StatusKeyExpired.
	Timestamp int64
}

// StatusSink is the external collaborator receiving status events (spec.md
// §6's "status_fd" analogue). A nil StatusSink is valid everywhere in this
// package; callers that don't care about status output may pass nil, and
// every emit site treats it as a no-op sink.
type StatusSink interface {
	Emit(ctx context.Context, ev StatusEvent)
}

func emitStatus(ctx context.Context, sink StatusSink, ev StatusEvent) {
	if sink == nil {
		return
	}
	sink.Emit(ctx, ev)
}

// NopStatusSink discards every event; useful for tests that don't assert on
// status output.
type NopStatusSink struct{}

// Emit implements StatusSink.
func (NopStatusSink) Emit(context.Context, StatusEvent) {}

// RecordingStatusSink collects emitted events for test assertions.
type RecordingStatusSink struct {
	Events []StatusEvent
}

// Emit implements StatusSink.
func (s *RecordingStatusSink) Emit(_ context.Context, ev StatusEvent) {
	s.Events = append(s.Events, ev)
}
