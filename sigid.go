package sigcheck

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
)

// emitSigID is the SIG-ID Emitter (spec.md §4.5). It is only called for
// data signatures (sig_class < 2); the SHA-1 choice and exact buffer
// layout are historical wire-compatibility requirements carried forward
// unchanged, not a cryptographic recommendation made by this core.
func emitSigID(ctx context.Context, sink StatusSink, s *Signature) {
	if !s.Class.IsDataSignature() {
		return
	}

	buf := make([]byte, 0, 16+len(s.MPIs)*34)
	buf = append(buf, byte(s.PubKeyAlgo), byte(s.DigestAlgo))
	var tsBuf [4]byte
	binary.BigEndian.PutUint32(tsBuf[:], uint32(s.Timestamp))
	buf = append(buf, tsBuf[:]...)
	for _, m := range s.MPIs {
		buf = append(buf, encodePGPMPI(m)...)
	}

	sum := sha1.Sum(buf)
	sigID := base64.StdEncoding.EncodeToString(sum[:])

	emitStatus(ctx, sink, StatusEvent{
		Kind:      StatusSigID,
		KeyID:     s.IssuerKeyID,
		SigID:     sigID,
		Timestamp: s.Timestamp,
	})
}

// encodePGPMPI renders m in OpenPGP's wire MPI format (spec.md §4.5 step 1,
// §6's mpi_print PGP format): a 2-byte big-endian bit-length followed by
// the minimum-length unsigned big-endian magnitude.
func encodePGPMPI(m *MPI) []byte {
	bitLen := m.BitLen()
	out := make([]byte, 2, 2+len(m.Bytes))
	binary.BigEndian.PutUint16(out, uint16(bitLen))
	return append(out, m.Bytes...)
}
