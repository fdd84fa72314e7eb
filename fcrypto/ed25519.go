package fcrypto

import "crypto/ed25519"

// VerifyEd25519 checks sig over hash under the 32-byte Ed25519 public key
// pub, following accountsigner/crypto.go's approach of reaching for the
// standard library's crypto/ed25519 directly rather than a third-party
// reimplementation (spec.md §4.1 step 3).
func VerifyEd25519(pub, sig, hash []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), hash, sig)
}
