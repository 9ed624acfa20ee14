package sigcheck

import "encoding/binary"

// finalizeSignatureHash is the Hash-Finalization Builder (spec.md §4.1). H
// must already have been fed the signed payload; this appends the
// signature's own trailing metadata per the wire rules before finalizing.
func finalizeSignatureHash(h HashContext, s *Signature) []byte {
	if s.Version >= 4 {
		writeByte(h, byte(s.Version))
		writeByte(h, byte(s.Class))
		writeByte(h, byte(s.PubKeyAlgo))
		writeByte(h, byte(s.DigestAlgo))

		hashedLen := len(s.HashedArea)
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(hashedLen))
		_, _ = h.Write(lenBuf[:])
		if hashedLen > 0 {
			_, _ = h.Write(s.HashedArea)
		}

		n := hashedLen + 6
		trailer := []byte{
			byte(s.Version),
			0xFF,
			byte(n >> 24),
			byte(n >> 16),
			byte(n >> 8),
			byte(n),
		}
		_, _ = h.Write(trailer)
	} else {
		writeByte(h, byte(s.Class))
		var tsBuf [4]byte
		binary.BigEndian.PutUint32(tsBuf[:], uint32(s.Timestamp))
		_, _ = h.Write(tsBuf[:])
	}
	return h.Sum()
}

func writeByte(h HashContext, b byte) {
	_, _ = h.Write([]byte{b})
}

// hashPublicKey feeds a public key's wire-format body into h, framed per
// spec.md §4.7: a 3-byte header [0x99, len_hi, len_lo] followed by the key
// packet body bytes. body is the already-serialized key packet body; this
// core does not itself encode public-key packets (that is the packet
// parser's job), so callers supply body alongside the *PublicKey.
func hashPublicKey(h HashContext, body []byte) {
	var header [3]byte
	header[0] = 0x99
	binary.BigEndian.PutUint16(header[1:], uint16(len(body)))
	_, _ = h.Write(header[:])
	_, _ = h.Write(body)
}

// hashUserID feeds a user-id (or user-attribute) body into h, framed per
// spec.md §4.7's "hash_uid_node" policy: v4+ signatures prepend
// [0xB4, 4-byte-BE(len)] for a user-id or [0xD1, 4-byte-BE(len)] for a
// user-attribute; v3 signatures prepend nothing.
func hashUserID(h HashContext, sigVersion int, isUserAttribute bool, body []byte) {
	if sigVersion >= 4 {
		tag := byte(0xB4)
		if isUserAttribute {
			tag = 0xD1
		}
		var header [5]byte
		header[0] = tag
		binary.BigEndian.PutUint32(header[1:], uint32(len(body)))
		_, _ = h.Write(header[:])
	}
	_, _ = h.Write(body)
}
