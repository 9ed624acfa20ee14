package sigcheck

import "fmt"

// SigClass is the one-octet signature class tag from the wire format
// (spec.md §3). It is kept as the raw octet — rather than an opaque
// interface value — because C1's hash builder must feed the literal byte
// into the hash. Neighbor reports the semantic classification (which
// keyblock neighbor a class needs); the dispatcher (C7) itself switches on
// the named class constants, with UID certifications as its default case.
type SigClass uint8

// Signature classes of interest to this core (spec.md §3).
const (
	SigClassBinary       SigClass = 0x00
	SigClassText         SigClass = 0x01
	SigClassUIDGeneric   SigClass = 0x10
	SigClassUIDPersona   SigClass = 0x11
	SigClassUIDCasual    SigClass = 0x12
	SigClassUIDPositive  SigClass = 0x13
	SigClassSubkeyBind   SigClass = 0x18
	SigClassPrimaryBind  SigClass = 0x19 // back-signature
	SigClassDirectKey    SigClass = 0x1F
	SigClassKeyRevoke    SigClass = 0x20
	SigClassSubkeyRevoke SigClass = 0x28
	SigClassCertRevoke   SigClass = 0x30
)

// NodeKind classifies the neighbor a key-over-key signature class (C7)
// must locate in its enclosing keyblock before it can be verified.
type NodeKind int

const (
	// NodeKindNone means the signature class needs no preceding neighbor
	// (direct key signatures and key revocations sign the primary key
	// itself).
	NodeKindNone NodeKind = iota
	// NodeKindSubkey means the dispatcher must find the nearest preceding
	// subkey packet (0x18, 0x28).
	NodeKindSubkey
	// NodeKindUserID means the dispatcher must find the nearest preceding
	// user-id or user-attribute packet (UID certifications).
	NodeKindUserID
)

// Neighbor reports which kind of preceding keyblock node, if any, this
// signature class requires (spec.md §4.7's "find previous packet" rule).
func (c SigClass) Neighbor() NodeKind {
	switch c {
	case SigClassSubkeyBind, SigClassSubkeyRevoke:
		return NodeKindSubkey
	case SigClassKeyRevoke, SigClassDirectKey:
		return NodeKindNone
	default:
		return NodeKindUserID
	}
}

// IsDataSignature reports whether this class is a binary or text data
// signature (spec.md §4.5: sig_class < 2 is SIG-ID eligible).
func (c SigClass) IsDataSignature() bool {
	return c == SigClassBinary || c == SigClassText
}

// IsKeyRevocation reports whether this class revokes a primary key (0x20).
func (c SigClass) IsKeyRevocation() bool {
	return c == SigClassKeyRevoke
}

// String implements fmt.Stringer for diagnostics and test failure output.
func (c SigClass) String() string {
	switch c {
	case SigClassBinary:
		return "binary-data"
	case SigClassText:
		return "text-data"
	case SigClassUIDGeneric:
		return "uid-generic"
	case SigClassUIDPersona:
		return "uid-persona"
	case SigClassUIDCasual:
		return "uid-casual"
	case SigClassUIDPositive:
		return "uid-positive"
	case SigClassSubkeyBind:
		return "subkey-binding"
	case SigClassPrimaryBind:
		return "primary-binding(backsig)"
	case SigClassDirectKey:
		return "direct-key"
	case SigClassKeyRevoke:
		return "key-revocation"
	case SigClassSubkeyRevoke:
		return "subkey-revocation"
	case SigClassCertRevoke:
		return "cert-revocation"
	default:
		return fmt.Sprintf("sig-class(0x%02x)", uint8(c))
	}
}

// BackSigStatus is the three-state back-signature status from spec.md §3
// ("flags.backsig ∈ {0,1,2}"). Kept as a distinct enum per spec.md §9's
// note that the verification policy need not change even though "absent"
// and "never attempted" remain collapsed into BackSigAbsent.
type BackSigStatus int

const (
	BackSigAbsent  BackSigStatus = 0
	BackSigInvalid BackSigStatus = 1
	BackSigValid   BackSigStatus = 2
)

// SignatureFlags is spec.md §3's {checked, valid, unknown_critical,
// backsig} tuple. The cache invariant (C4) is: (false,_) unknown,
// (true,true) proven valid, (true,false) proven invalid.
type SignatureFlags struct {
	Checked         bool
	Valid           bool
	UnknownCritical bool
	BackSig         BackSigStatus
}

// Signature is the central record from spec.md §3.
type Signature struct {
	Version      int // 3 or 4; affects the hashing recipe (C1).
	Class        SigClass
	PubKeyAlgo   PubKeyAlgo
	DigestAlgo   DigestAlgo
	Timestamp    int64 // seconds since epoch
	IssuerKeyID  uint64
	HashedArea   []byte // authenticated subpackets; may be empty
	UnhashedArea []byte // advisory subpackets
	MPIs         []*MPI // the signature's large-integer components
	Flags        SignatureFlags
}

// PubKeyAlgo identifies a public-key algorithm (spec.md §3). The concrete
// integer space is OpenPGP's (RFC 4880 §9.1); only the subset this core's
// MPI encoding (C3) distinguishes is named.
type PubKeyAlgo int

const (
	PubKeyAlgoUnknown PubKeyAlgo = 0
	PubKeyAlgoRSA     PubKeyAlgo = 1
	PubKeyAlgoDSA     PubKeyAlgo = 17
	PubKeyAlgoECDSA   PubKeyAlgo = 19
	PubKeyAlgoEdDSA   PubKeyAlgo = 22
)

// NSig returns the number of MPI components a signature of this algorithm
// carries (RSA: one; DSA/ECDSA/EdDSA: two); Supported uses it to tell
// known algorithms from unknown ones.
func (a PubKeyAlgo) NSig() int {
	switch a {
	case PubKeyAlgoRSA:
		return 1
	case PubKeyAlgoDSA, PubKeyAlgoECDSA, PubKeyAlgoEdDSA:
		return 2
	default:
		return 0
	}
}

// Supported reports whether this core knows how to encode a digest MPI for
// the algorithm (C3). Unknown algorithms surface as ErrUnsupportedAlgorithm.
func (a PubKeyAlgo) Supported() bool {
	return a.NSig() > 0
}

// DigestAlgo identifies a hash algorithm by its OpenPGP algorithm id
// (RFC 4880 §9.4).
type DigestAlgo int

const (
	DigestAlgoUnknown   DigestAlgo = 0
	DigestAlgoMD5       DigestAlgo = 1
	DigestAlgoSHA1      DigestAlgo = 2
	DigestAlgoRIPEMD160 DigestAlgo = 3
	DigestAlgoSHA256    DigestAlgo = 8
	DigestAlgoSHA384    DigestAlgo = 9
	DigestAlgoSHA512    DigestAlgo = 10
	DigestAlgoSHA224    DigestAlgo = 11
)

// String returns the canonical name used both for glob-pattern matching
// (WithWeakDigestPatterns) and diagnostics.
func (a DigestAlgo) String() string {
	switch a {
	case DigestAlgoMD5:
		return "MD5"
	case DigestAlgoSHA1:
		return "SHA1"
	case DigestAlgoRIPEMD160:
		return "RIPEMD160"
	case DigestAlgoSHA256:
		return "SHA256"
	case DigestAlgoSHA384:
		return "SHA384"
	case DigestAlgoSHA512:
		return "SHA512"
	case DigestAlgoSHA224:
		return "SHA224"
	default:
		return fmt.Sprintf("digest-algo(%d)", int(a))
	}
}

// Supported reports whether this core recognizes the digest algorithm.
func (a DigestAlgo) Supported() bool {
	switch a {
	case DigestAlgoMD5, DigestAlgoSHA1, DigestAlgoRIPEMD160,
		DigestAlgoSHA256, DigestAlgoSHA384, DigestAlgoSHA512, DigestAlgoSHA224:
		return true
	default:
		return false
	}
}

// DesignatedRevoker is one entry in a public key's designated-revoker list
// (spec.md §3): a separate key pre-authorized to issue revocations for this
// key.
type DesignatedRevoker struct {
	Fingerprint []byte
	Class       byte
	Algo        PubKeyAlgo
	Sensitive   bool
}

// PublicKey is spec.md §3's public-key packet record. The verifier never
// mutates a PublicKey obtained from a KeyDB lookup directly — see keydb.go's
// Copy contract — but does set DontCache as a side effect of C8's
// recursion guard.
type PublicKey struct {
	Version            int
	Algo               PubKeyAlgo
	CreatedAt          int64
	ExpiresAt          int64 // 0 means "does not expire"
	MPIs               []*MPI
	IsPrimary          bool
	IsValid            bool
	HasExpired         bool
	IsRevoked          bool
	KeyID              uint64
	Fingerprint        []byte
	DesignatedRevokers []DesignatedRevoker
	DontCache          bool

	// WireBody is the serialized key packet body (version through the
	// final MPI, RFC 4880 §5.5.2), supplied by the packet parser. This
	// core treats it as an opaque byte string to feed into hashPublicKey's
	// 0x99 framing; it never interprets or re-encodes it.
	WireBody []byte
}

// NodeKindPacket classifies an entry in a KeyBlock's packet sequence.
type NodeKindPacket int

const (
	NodePrimaryKey NodeKindPacket = iota
	NodeUserID
	NodeUserAttribute
	NodeSubkey
	NodeSignature
)

// KeyBlockNode is one entry in a KeyBlock's ordered packet sequence
// (spec.md §3: "ordered sequence of packets rooted at a primary public
// key, followed by user-ids, subkeys, and signatures").
type KeyBlockNode struct {
	Kind      NodeKindPacket
	PublicKey *PublicKey // valid when Kind is NodePrimaryKey or NodeSubkey
	UserID    []byte     // valid when Kind is NodeUserID (raw UID body bytes)
	UserAttr  []byte     // valid when Kind is NodeUserAttribute (raw body bytes)
	Signature *Signature // valid when Kind is NodeSignature
}

// KeyBlock is an owned, index-addressable sequence of packets (spec.md §9:
// "model a keyblock as an owned ordered sequence indexed by position" to
// avoid pointer-linked-list cleanup hazards). Primary is the root key,
// cached separately for O(1) access since every dispatch path needs it.
type KeyBlock struct {
	Nodes   []KeyBlockNode
	Primary *PublicKey
}

// FindPrevNode scans backward from index i (exclusive) toward the root for
// the nearest node of the given kind — spec.md §3's "find previous packet
// of type T starting from node N" navigation rule, used by C7 to locate the
// subkey or user-id a key-over-key signature certifies. Returns -1 if none
// is found.
func (kb *KeyBlock) FindPrevNode(i int, kind NodeKindPacket) int {
	for j := i - 1; j >= 0; j-- {
		if kb.Nodes[j].Kind == kind {
			return j
		}
	}
	return -1
}
