package sigcheck

import (
	"crypto"
	"fmt"
	"math/big"

	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
)

// MPI is an OpenPGP multi-precision integer (RFC 4880 §3.2): a big-endian
// two's-complement-free magnitude, as found in signature and public-key
// packets. Modeled directly on the wire struct the ProtonMail packet
// decoder uses for v3 signatures, reduced to the one operation this core
// needs: treating the bytes as a big.Int for digest-MPI comparison (C3).
type MPI struct {
	Bytes []byte
}

// NewMPI wraps raw big-endian magnitude bytes as an MPI, stripping any
// leading zero bytes the way the wire format's bit-count prefix implies.
func NewMPI(b []byte) *MPI {
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	return &MPI{Bytes: b[i:]}
}

// BigInt renders the MPI as a math/big integer for comparison against a
// freshly encoded digest value.
func (m *MPI) BigInt() *big.Int {
	if m == nil {
		return new(big.Int)
	}
	return new(big.Int).SetBytes(m.Bytes)
}

// BitLen returns the MPI's bit length, matching OpenPGP's MPI length prefix
// semantics (no leading zero bits in the top byte).
func (m *MPI) BitLen() int {
	return m.BigInt().BitLen()
}

// cryptoHash maps this core's DigestAlgo to the standard library's
// crypto.Hash, the bridge needed to look up a PKCS#1-style DigestInfo
// prefix for RSA signature encoding. Algorithms with no stdlib equivalent
// (RIPEMD160) report ok=false; callers still hash with the external
// HashContext collaborator, but this core cannot itself build a
// DigestInfo for them.
func (a DigestAlgo) cryptoHash() (crypto.Hash, bool) {
	switch a {
	case DigestAlgoMD5:
		return crypto.MD5, true
	case DigestAlgoSHA1:
		return crypto.SHA1, true
	case DigestAlgoSHA224:
		return crypto.SHA224, true
	case DigestAlgoSHA256:
		return crypto.SHA256, true
	case DigestAlgoSHA384:
		return crypto.SHA384, true
	case DigestAlgoSHA512:
		return crypto.SHA512, true
	default:
		return 0, false
	}
}

// encodeDigestMPI reproduces the original implementation's encode_md_value:
// for RSA, the digest is wrapped in a PKCS#1 v1.5 DigestInfo (ASN.1
// algorithm-identifier prefix for the hash, followed by the raw digest
// bytes) before being compared as an MPI against the recovered signature
// value. For DSA/ECDSA/EdDSA the digest is used as-is, truncated to the key's
// bit length if the digest is wider than the key (spec.md §4.3).
func encodeDigestMPI(algo PubKeyAlgo, digestAlgo DigestAlgo, digest []byte, keyBitLen int) (*MPI, error) {
	if !algo.Supported() {
		return nil, newVerifyError("encode-digest-mpi", ErrUnsupportedAlgorithm, algo.String())
	}
	switch algo {
	case PubKeyAlgoRSA:
		h, ok := digestAlgo.cryptoHash()
		if !ok {
			return nil, newVerifyError("encode-digest-mpi", ErrUnsupportedAlgorithm,
				fmt.Sprintf("no DigestInfo prefix for %s", digestAlgo))
		}
		info := make([]byte, 0, len(hashPrefixes[h])+len(digest))
		info = append(info, hashPrefixes[h]...)
		info = append(info, digest...)
		return NewMPI(info), nil
	case PubKeyAlgoDSA, PubKeyAlgoECDSA, PubKeyAlgoEdDSA:
		return NewMPI(truncateDigest(digest, keyBitLen)), nil
	default:
		return nil, newVerifyError("encode-digest-mpi", ErrUnsupportedAlgorithm, algo.String())
	}
}

// truncateDigest implements DSA/ECDSA's "leftmost min(bitlen(q), bitlen(digest))
// bits" rule (RFC 4880 §5.2.2): if the digest is wider than the key's group
// order, only its most significant keyBitLen bits participate.
func truncateDigest(digest []byte, keyBitLen int) []byte {
	if keyBitLen <= 0 || keyBitLen >= len(digest)*8 {
		return digest
	}
	nBytes := (keyBitLen + 7) / 8
	if nBytes > len(digest) {
		nBytes = len(digest)
	}
	v := new(big.Int).SetBytes(digest[:nBytes])
	v.Rsh(v, uint(nBytes*8-keyBitLen))
	return v.Bytes()
}

// groupOrderBits returns the bit length digest truncation should target for
// this key's algorithm (spec.md §4.3's DSA/ECDSA bare-integer-reduction
// case): the group order's bit length, conventionally the key's second MPI
// component (q for DSA, the curve order for ECDSA/EdDSA keys encoded the
// same way). RSA keys report 0, since RSA never truncates the digest.
func (k *PublicKey) groupOrderBits() int {
	switch k.Algo {
	case PubKeyAlgoDSA, PubKeyAlgoECDSA, PubKeyAlgoEdDSA:
		if len(k.MPIs) >= 2 {
			return k.MPIs[1].BitLen()
		}
	}
	return 0
}

// hashPrefixes holds the PKCS#1 v1.5 DigestInfo ASN.1 prefixes for the hash
// algorithms this core can encode for RSA, matching RFC 4880 §5.2.2's
// table and crypto/rsa's well-known hashPrefixes constants.
var hashPrefixes = map[crypto.Hash][]byte{
	crypto.MD5:    {0x30, 0x20, 0x30, 0x0c, 0x06, 0x08, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x02, 0x05, 0x05, 0x00, 0x04, 0x10},
	crypto.SHA1:   {0x30, 0x21, 0x30, 0x09, 0x06, 0x05, 0x2b, 0x0e, 0x03, 0x02, 0x1a, 0x05, 0x00, 0x04, 0x14},
	crypto.SHA224: {0x30, 0x2d, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x04, 0x05, 0x00, 0x04, 0x1c},
	crypto.SHA256: {0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00, 0x04, 0x20},
	crypto.SHA384: {0x30, 0x41, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x02, 0x05, 0x00, 0x04, 0x30},
	crypto.SHA512: {0x30, 0x51, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01, 0x65, 0x03, 0x04, 0x02, 0x03, 0x05, 0x00, 0x04, 0x40},
}
