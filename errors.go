package sigcheck

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy in spec.md §7. Check with errors.Is, or
// use VerifyError's convenience predicates below.
var (
	// ErrUnsupportedAlgorithm means the digest or public-key algorithm is
	// not available, or is rejected by the weak-digest policy.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrNoPublicKey means the signer key is absent from the key database.
	ErrNoPublicKey = errors.New("no public key")

	// ErrBadPublicKey means the signer key is present but is an invalid
	// subkey (cannot have produced a good signature).
	ErrBadPublicKey = errors.New("bad public key")

	// ErrTimeConflict means the signer key was created after the
	// signature, or in the future, and ignore_time_conflict is not set.
	ErrTimeConflict = errors.New("time conflict")

	// ErrBadSignature means cryptographic verification failed, or an
	// unknown critical subpacket forced rejection of an otherwise-good
	// signature.
	ErrBadSignature = errors.New("bad signature")

	// ErrSigClass means a key-signature refers to a neighbor (subkey or
	// user-id) that is missing from its keyblock.
	ErrSigClass = errors.New("signature class neighbor not found")

	// ErrGeneral covers hash-algorithm enable mismatches, missing strict
	// cross-certification, and the designated-revoker recursion guard.
	ErrGeneral = errors.New("general verification failure")
)

// VerifyError carries operation context around one of the sentinel errors
// above, the way oci.BundleError carries Op/Reference/SignatureInfo around
// an OCI verification failure.
type VerifyError struct {
	// Op names the operation that failed, e.g. "verify-data-signature",
	// "verify-key-signature", "check-backsig", "check-revocation-keys".
	Op string

	// KeyID is the issuer key id the signature named, formatted as hex,
	// when known.
	KeyID string

	// SigClass is the signature class involved, when known.
	SigClass SigClass

	// Diagnostic is a human-readable explanation, mirroring the log
	// messages GnuPG emits alongside the same failure (see metadata.go).
	Diagnostic string

	// Err is the underlying sentinel error.
	Err error
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Err.Error(), e.Diagnostic)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

// Unwrap supports errors.Is/errors.As against the sentinel errors.
func (e *VerifyError) Unwrap() error {
	return e.Err
}

func newVerifyError(op string, err error, diagnostic string) *VerifyError {
	return &VerifyError{Op: op, Err: err, Diagnostic: diagnostic}
}

func (e *VerifyError) withKeyID(keyID uint64) *VerifyError {
	e.KeyID = fmt.Sprintf("%016X", keyID)
	return e
}

func (e *VerifyError) withSigClass(c SigClass) *VerifyError {
	e.SigClass = c
	return e
}

// IsTimeConflict reports whether err (or a wrapped cause) is ErrTimeConflict.
func IsTimeConflict(err error) bool { return errors.Is(err, ErrTimeConflict) }

// IsNoPublicKey reports whether err (or a wrapped cause) is ErrNoPublicKey.
func IsNoPublicKey(err error) bool { return errors.Is(err, ErrNoPublicKey) }

// IsBadSignature reports whether err (or a wrapped cause) is ErrBadSignature.
func IsBadSignature(err error) bool { return errors.Is(err, ErrBadSignature) }
