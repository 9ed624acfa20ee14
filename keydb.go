package sigcheck

import "context"

// HashContext is the external collaborator that performs the actual
// message-digest computation (spec.md §6): this core feeds it signature
// trailer bytes via Write and reads back the finalized digest via Sum. The
// caller is responsible for having already written the signed data itself
// before this core's hash.go appends the signature's own framing.
type HashContext interface {
	// Algo reports the digest algorithm this context was created for.
	Algo() DigestAlgo
	// Write appends more bytes to the running digest.
	Write(p []byte) (n int, err error)
	// Sum returns the finalized digest. Implementations may choose whether
	// a second Sum call is valid; this core calls it exactly once per
	// verification.
	Sum() []byte
}

// PKVerifier is the external collaborator performing the public-key
// primitive (spec.md §6's "pk_verify"): given a key, a signature's raw MPI
// components, and the expected digest MPI, it reports whether the
// signature mathematically checks out.
type PKVerifier interface {
	// Verify reports whether sigMPIs is a valid signature over digestMPI
	// under key, using algo's primitive. It returns ErrUnsupportedAlgorithm
	// for an algorithm it cannot perform, and ErrBadSignature (or a wrapped
	// cause) for a primitive that ran but rejected the signature.
	Verify(ctx context.Context, key *PublicKey, algo PubKeyAlgo, sigMPIs []*MPI, digestMPI *MPI) error
}

// KeyDB is the external collaborator giving this core read access to a
// local key database (spec.md §1, §6): looking up a key by id or
// fingerprint, and copying out owned snapshots so verification results can
// be cached onto them without racing the caller's own mutation of the
// database.
type KeyDB interface {
	// Lookup returns the public key with the given 64-bit key id, or
	// (nil, ErrNoPublicKey) if it is not present.
	Lookup(ctx context.Context, keyID uint64) (*PublicKey, error)

	// LookupFingerprint returns the public key with the given fingerprint,
	// or (nil, ErrNoPublicKey) if it is not present. Used by the
	// designated-revoker resolver (C8), which addresses keys by
	// fingerprint rather than key id.
	LookupFingerprint(ctx context.Context, fingerprint []byte) (*PublicKey, error)

	// Copy returns an owned, independently mutable snapshot of key,
	// suitable for the caller-provided *PublicKey out-parameter pattern
	// this core's VerifySimple wrapper uses (spec.md §5.2's ret_pk).
	Copy(key *PublicKey) *PublicKey
}

// MapKeyDB is a minimal in-memory KeyDB keyed by key id and fingerprint,
// suitable for unit tests and small embedders. Modeled on the fixture
// lookup table t-keydb.c builds by hand before exercising keydb_search.
type MapKeyDB struct {
	byKeyID       map[uint64]*PublicKey
	byFingerprint map[string]*PublicKey
}

// NewMapKeyDB returns an empty MapKeyDB ready for Add calls.
func NewMapKeyDB() *MapKeyDB {
	return &MapKeyDB{
		byKeyID:       make(map[uint64]*PublicKey),
		byFingerprint: make(map[string]*PublicKey),
	}
}

// Add registers key under both its key id and fingerprint.
func (db *MapKeyDB) Add(key *PublicKey) {
	db.byKeyID[key.KeyID] = key
	db.byFingerprint[string(key.Fingerprint)] = key
}

// Lookup implements KeyDB.
func (db *MapKeyDB) Lookup(_ context.Context, keyID uint64) (*PublicKey, error) {
	k, ok := db.byKeyID[keyID]
	if !ok {
		return nil, ErrNoPublicKey
	}
	return k, nil
}

// LookupFingerprint implements KeyDB.
func (db *MapKeyDB) LookupFingerprint(_ context.Context, fingerprint []byte) (*PublicKey, error) {
	k, ok := db.byFingerprint[string(fingerprint)]
	if !ok {
		return nil, ErrNoPublicKey
	}
	return k, nil
}

// Copy implements KeyDB by returning a shallow struct copy with its own
// DesignatedRevokers slice header; callers that need independent slice
// mutation beyond DontCache/IsValid/HasExpired/IsRevoked should not rely on
// deep-copying MPIs.
func (db *MapKeyDB) Copy(key *PublicKey) *PublicKey {
	if key == nil {
		return nil
	}
	cp := *key
	return &cp
}
