package sigcheck

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func primaryWithSubkey(primaryID, subID uint64) (*KeyBlock, *PublicKey, *PublicKey) {
	p := &PublicKey{IsPrimary: true, KeyID: primaryID, CreatedAt: 1000, Fingerprint: testFingerprint(1), WireBody: []byte("primary-body")}
	sub := &PublicKey{IsPrimary: false, KeyID: subID, CreatedAt: 1000, Fingerprint: testFingerprint(2), WireBody: []byte("sub-body")}
	kb := &KeyBlock{
		Primary: p,
		Nodes: []KeyBlockNode{
			{Kind: NodePrimaryKey, PublicKey: p},
			{Kind: NodeSubkey, PublicKey: sub},
		},
	}
	return kb, p, sub
}

func TestVerifyKeySignature_SubkeyBinding_Good(t *testing.T) {
	kb, p, sub := primaryWithSubkey(1, 2)
	s := &Signature{Version: 4, Class: SigClassSubkeyBind, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, Timestamp: 2000, IssuerKeyID: p.KeyID}
	kb.Nodes = append(kb.Nodes, KeyBlockNode{Kind: NodeSignature, Signature: s})
	sigIdx := len(kb.Nodes) - 1

	db := NewMapKeyDB()
	db.Add(p)
	db.Add(sub)
	pkv := newFakePKVerifier()
	prefix := append(append([]byte{0x99, 0, byte(len(p.WireBody))}, p.WireBody...), append([]byte{0x99, 0, byte(len(sub.WireBody))}, sub.WireBody...)...)
	digest := digestFor(DigestAlgoSHA256, prefix, s)
	pkv.approve(p.KeyID, digest)

	hf := &fakeHashFactory{}
	result, err := verifyKeySignatureAt(context.Background(), kb, sigIdx, nil, db, pkv, hf, nil, time.Unix(3000, 0), NewOptions())
	require.NoError(t, err)
	require.True(t, result.IsSelfSig)
	require.Equal(t, 1, hf.opens)
}

func TestVerifyKeySignature_SubkeyBinding_NoSubkeyFails(t *testing.T) {
	p := &PublicKey{IsPrimary: true, KeyID: 1, CreatedAt: 1000, WireBody: []byte("primary-body")}
	s := &Signature{Version: 4, Class: SigClassSubkeyBind, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, IssuerKeyID: 1}
	kb := &KeyBlock{Primary: p, Nodes: []KeyBlockNode{
		{Kind: NodePrimaryKey, PublicKey: p},
		{Kind: NodeSignature, Signature: s},
	}}

	db := NewMapKeyDB()
	db.Add(p)
	pkv := newFakePKVerifier()
	hf := &fakeHashFactory{}
	_, err := verifyKeySignatureAt(context.Background(), kb, 1, nil, db, pkv, hf, nil, time.Unix(3000, 0), NewOptions())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSigClass)
}

func TestVerifyKeySignature_CacheFastPath(t *testing.T) {
	p := &PublicKey{IsPrimary: true, KeyID: 1, CreatedAt: 1000}
	s := &Signature{Class: SigClassDirectKey, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, Timestamp: 2000, IssuerKeyID: 1}
	s.Flags.Checked = true
	s.Flags.Valid = true
	kb := &KeyBlock{Primary: p, Nodes: []KeyBlockNode{
		{Kind: NodePrimaryKey, PublicKey: p},
		{Kind: NodeSignature, Signature: s},
	}}

	db := NewMapKeyDB()
	db.Add(p)
	pkv := newFakePKVerifier()
	hf := &fakeHashFactory{}
	result, err := verifyKeySignatureAt(context.Background(), kb, 1, nil, db, pkv, hf, nil, time.Unix(3000, 0), NewOptions())
	require.NoError(t, err)
	require.True(t, result.IsSelfSig)
	require.Equal(t, 0, pkv.calls)
	require.Equal(t, 0, hf.opens)
}

func TestVerifyKeySignature_CacheFastPath_BugReplicatedByDefault(t *testing.T) {
	p := &PublicKey{IsPrimary: true, KeyID: 1, CreatedAt: 1000}
	signer := &PublicKey{IsPrimary: true, KeyID: 2, CreatedAt: 5000}
	s := &Signature{Class: SigClassUIDPositive, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, Timestamp: 2000, IssuerKeyID: 2}
	s.Flags.Checked = true
	s.Flags.Valid = true
	kb := &KeyBlock{Primary: p, Nodes: []KeyBlockNode{
		{Kind: NodePrimaryKey, PublicKey: p},
		{Kind: NodeSignature, Signature: s},
	}}

	db := NewMapKeyDB()
	db.Add(p)
	db.Add(signer)
	pkv := newFakePKVerifier()
	hf := &fakeHashFactory{}

	// Default: metadata is checked against the primary key P, not the real
	// signer, so the signer's future-relative-to-the-signature creation time
	// never surfaces as a conflict.
	result, err := verifyKeySignatureAt(context.Background(), kb, 1, nil, db, pkv, hf, nil, time.Unix(6000, 0), NewOptions())
	require.NoError(t, err)
	require.False(t, result.IsSelfSig)
	require.Equal(t, 0, pkv.calls)
}

func TestVerifyKeySignature_CacheFastPath_FixResolvesActualSigner(t *testing.T) {
	p := &PublicKey{IsPrimary: true, KeyID: 1, CreatedAt: 1000}
	signer := &PublicKey{IsPrimary: true, KeyID: 2, CreatedAt: 5000}
	s := &Signature{Class: SigClassUIDPositive, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, Timestamp: 2000, IssuerKeyID: 2}
	s.Flags.Checked = true
	s.Flags.Valid = true
	kb := &KeyBlock{Primary: p, Nodes: []KeyBlockNode{
		{Kind: NodePrimaryKey, PublicKey: p},
		{Kind: NodeSignature, Signature: s},
	}}

	db := NewMapKeyDB()
	db.Add(p)
	db.Add(signer)
	pkv := newFakePKVerifier()
	hf := &fakeHashFactory{}

	// With the fix, metadata is checked against the actual signer (created
	// at 5000, after the signature's timestamp of 2000), surfacing the
	// conflict that the unfixed path misses.
	_, err := verifyKeySignatureAt(context.Background(), kb, 1, nil, db, pkv, hf, nil, time.Unix(6000, 0), NewOptions(WithFixCacheFastPathSigner(true)))
	require.Error(t, err)
	require.True(t, IsTimeConflict(err))
}

func TestVerifyKeySignature_UIDCertification_CheckPKOverride(t *testing.T) {
	p := &PublicKey{IsPrimary: true, KeyID: 1, CreatedAt: 1000, WireBody: []byte("primary-body")}
	checkPK := &PublicKey{KeyID: 9, CreatedAt: 1000}
	uid := []byte("alice@example.com")
	s := &Signature{Version: 4, Class: SigClassUIDPositive, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, Timestamp: 2000, IssuerKeyID: 9}
	kb := &KeyBlock{Primary: p, Nodes: []KeyBlockNode{
		{Kind: NodePrimaryKey, PublicKey: p},
		{Kind: NodeUserID, UserID: uid},
		{Kind: NodeSignature, Signature: s},
	}}

	db := NewMapKeyDB()
	db.Add(p)
	pkv := newFakePKVerifier()

	prefix := append([]byte{0x99, 0, byte(len(p.WireBody))}, p.WireBody...)
	var uidHeader [5]byte
	uidHeader[0] = 0xB4
	uidHeader[4] = byte(len(uid))
	prefix = append(prefix, uidHeader[:]...)
	prefix = append(prefix, uid...)
	digest := digestFor(DigestAlgoSHA256, prefix, s)
	pkv.approve(checkPK.KeyID, digest)
	hf := &fakeHashFactory{}

	result, err := verifyKeySignatureAt(context.Background(), kb, 2, checkPK, db, pkv, hf, nil, time.Unix(3000, 0), NewOptions())
	require.NoError(t, err)
	require.False(t, result.IsSelfSig)
	require.NotNil(t, result.SignerKey)
	require.Equal(t, checkPK.KeyID, result.SignerKey.KeyID)
}

func TestVerifyKeySignature_UIDCertification_ExternalLookupFallback(t *testing.T) {
	p := &PublicKey{IsPrimary: true, KeyID: 1, CreatedAt: 1000, WireBody: []byte("primary-body")}
	external := &PublicKey{KeyID: 9, CreatedAt: 1000}
	uid := []byte("alice@example.com")
	s := &Signature{Version: 4, Class: SigClassUIDPositive, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, Timestamp: 2000, IssuerKeyID: 9}
	kb := &KeyBlock{Primary: p, Nodes: []KeyBlockNode{
		{Kind: NodePrimaryKey, PublicKey: p},
		{Kind: NodeUserID, UserID: uid},
		{Kind: NodeSignature, Signature: s},
	}}

	db := NewMapKeyDB()
	db.Add(p)
	db.Add(external) // not present anywhere in the keyblock
	pkv := newFakePKVerifier()

	prefix := append([]byte{0x99, 0, byte(len(p.WireBody))}, p.WireBody...)
	var uidHeader [5]byte
	uidHeader[0] = 0xB4
	uidHeader[4] = byte(len(uid))
	prefix = append(prefix, uidHeader[:]...)
	prefix = append(prefix, uid...)
	digest := digestFor(DigestAlgoSHA256, prefix, s)
	pkv.approve(external.KeyID, digest)
	hf := &fakeHashFactory{}

	result, err := verifyKeySignatureAt(context.Background(), kb, 2, nil, db, pkv, hf, nil, time.Unix(3000, 0), NewOptions())
	require.NoError(t, err)
	require.False(t, result.IsSelfSig)
	require.NotNil(t, result.SignerKey)
	require.Equal(t, external.KeyID, result.SignerKey.KeyID)
}

func TestVerifyKeySignature_UIDCertification_StrictUIDSignersRejectsOutsideSigner(t *testing.T) {
	p := &PublicKey{IsPrimary: true, KeyID: 1, CreatedAt: 1000, WireBody: []byte("primary-body")}
	outsider := &PublicKey{KeyID: 9, CreatedAt: 1000}
	uid := []byte("alice@example.com")
	s := &Signature{Version: 4, Class: SigClassUIDPositive, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, Timestamp: 2000, IssuerKeyID: 9}
	kb := &KeyBlock{Primary: p, Nodes: []KeyBlockNode{
		{Kind: NodePrimaryKey, PublicKey: p},
		{Kind: NodeUserID, UserID: uid},
		{Kind: NodeSignature, Signature: s},
	}}

	db := NewMapKeyDB()
	db.Add(p)
	db.Add(outsider)
	pkv := newFakePKVerifier()
	hf := &fakeHashFactory{}

	_, err := verifyKeySignatureAt(context.Background(), kb, 2, nil, db, pkv, hf, nil, time.Unix(3000, 0), NewOptions(WithStrictUIDSigners(true)))
	require.Error(t, err)
	require.True(t, IsNoPublicKey(err))
	require.Equal(t, 0, pkv.calls)
}

func TestVerifyKeySignature_UIDCertification_StrictUIDSignersAllowsInBlockSubkey(t *testing.T) {
	p := &PublicKey{IsPrimary: true, KeyID: 1, CreatedAt: 1000, WireBody: []byte("primary-body")}
	sub := &PublicKey{KeyID: 9, CreatedAt: 1000}
	uid := []byte("alice@example.com")
	s := &Signature{Version: 4, Class: SigClassUIDPositive, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, Timestamp: 2000, IssuerKeyID: 9}
	kb := &KeyBlock{Primary: p, Nodes: []KeyBlockNode{
		{Kind: NodePrimaryKey, PublicKey: p},
		{Kind: NodeUserID, UserID: uid},
		{Kind: NodeSubkey, PublicKey: sub},
		{Kind: NodeSignature, Signature: s},
	}}

	db := NewMapKeyDB()
	db.Add(p)
	db.Add(sub)
	pkv := newFakePKVerifier()

	prefix := append([]byte{0x99, 0, byte(len(p.WireBody))}, p.WireBody...)
	var uidHeader [5]byte
	uidHeader[0] = 0xB4
	uidHeader[4] = byte(len(uid))
	prefix = append(prefix, uidHeader[:]...)
	prefix = append(prefix, uid...)
	digest := digestFor(DigestAlgoSHA256, prefix, s)
	pkv.approve(sub.KeyID, digest)
	hf := &fakeHashFactory{}

	result, err := verifyKeySignatureAt(context.Background(), kb, 3, nil, db, pkv, hf, nil, time.Unix(3000, 0), NewOptions(WithStrictUIDSigners(true)))
	require.NoError(t, err)
	require.NotNil(t, result.SignerKey)
	require.Equal(t, sub.KeyID, result.SignerKey.KeyID)
}

func TestVerifyKeySignature_DirectKeySignature(t *testing.T) {
	p := &PublicKey{IsPrimary: true, KeyID: 1, CreatedAt: 1000, WireBody: []byte("primary-body")}
	s := &Signature{Version: 4, Class: SigClassDirectKey, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, Timestamp: 2000, IssuerKeyID: 1}
	kb := &KeyBlock{Primary: p, Nodes: []KeyBlockNode{
		{Kind: NodePrimaryKey, PublicKey: p},
		{Kind: NodeSignature, Signature: s},
	}}

	db := NewMapKeyDB()
	db.Add(p)
	pkv := newFakePKVerifier()
	prefix := append([]byte{0x99, 0, byte(len(p.WireBody))}, p.WireBody...)
	digest := digestFor(DigestAlgoSHA256, prefix, s)
	pkv.approve(p.KeyID, digest)
	hf := &fakeHashFactory{}

	result, err := verifyKeySignatureAt(context.Background(), kb, 1, nil, db, pkv, hf, nil, time.Unix(3000, 0), NewOptions())
	require.NoError(t, err)
	require.NotNil(t, result.SignerKey)
}

func TestVerifyKeySignature_UIDCertification_SelfSig(t *testing.T) {
	p := &PublicKey{IsPrimary: true, KeyID: 1, CreatedAt: 1000, WireBody: []byte("primary-body")}
	uid := []byte("alice@example.com")
	s := &Signature{Version: 4, Class: SigClassUIDPositive, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, Timestamp: 2000, IssuerKeyID: 1}
	kb := &KeyBlock{Primary: p, Nodes: []KeyBlockNode{
		{Kind: NodePrimaryKey, PublicKey: p},
		{Kind: NodeUserID, UserID: uid},
		{Kind: NodeSignature, Signature: s},
	}}

	db := NewMapKeyDB()
	db.Add(p)
	pkv := newFakePKVerifier()

	prefix := append([]byte{0x99, 0, byte(len(p.WireBody))}, p.WireBody...)
	var uidHeader [5]byte
	uidHeader[0] = 0xB4
	uidHeader[4] = byte(len(uid))
	prefix = append(prefix, uidHeader[:]...)
	prefix = append(prefix, uid...)
	digest := digestFor(DigestAlgoSHA256, prefix, s)
	pkv.approve(p.KeyID, digest)
	hf := &fakeHashFactory{}

	result, err := verifyKeySignatureAt(context.Background(), kb, 2, nil, db, pkv, hf, nil, time.Unix(3000, 0), NewOptions())
	require.NoError(t, err)
	require.True(t, result.IsSelfSig)
}

func TestVerifyKeySignature_UIDCertification_NoUserIDFails(t *testing.T) {
	p := &PublicKey{IsPrimary: true, KeyID: 1, CreatedAt: 1000}
	s := &Signature{Class: SigClassUIDPositive, PubKeyAlgo: PubKeyAlgoRSA, DigestAlgo: DigestAlgoSHA256, IssuerKeyID: 1}
	kb := &KeyBlock{Primary: p, Nodes: []KeyBlockNode{
		{Kind: NodePrimaryKey, PublicKey: p},
		{Kind: NodeSignature, Signature: s},
	}}
	db := NewMapKeyDB()
	db.Add(p)
	pkv := newFakePKVerifier()
	hf := &fakeHashFactory{}

	_, err := verifyKeySignatureAt(context.Background(), kb, 1, nil, db, pkv, hf, nil, time.Unix(3000, 0), NewOptions())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSigClass)
}
