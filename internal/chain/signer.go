package chain

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Witness is a verification key and its signature over a transaction body hash.
type Witness struct {
	VKey      []byte
	Signature []byte
}

// Signer produces witnesses. Implementations are safe for concurrent use.
type Signer interface {
	Sign(txBodyHash []byte) (Witness, error)
	// KeyHash is the hex blake2b-224 hash of the verification key, the form
	// used for required signers.
	KeyHash() string
}

// Ed25519Signer signs with a fixed ed25519 key.
type Ed25519Signer struct {
	key     ed25519.PrivateKey
	keyHash string
}

// NewEd25519Signer parses a 32 byte signing key seed given as hex. The
// CBOR envelope written by cardano-cli ("5820" prefix) is accepted too.
func NewEd25519Signer(skeyHex string) (*Ed25519Signer, error) {
	s := strings.TrimSpace(skeyHex)
	if len(s) == 68 && strings.HasPrefix(s, "5820") {
		s = s[4:]
	}
	seed, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding signing key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	key := ed25519.NewKeyFromSeed(seed)
	pub := key.Public().(ed25519.PublicKey)

	h, err := blake2b.New(28, nil)
	if err != nil {
		return nil, fmt.Errorf("creating key hash: %w", err)
	}
	h.Write(pub)

	return &Ed25519Signer{key: key, keyHash: hex.EncodeToString(h.Sum(nil))}, nil
}

// Sign signs the transaction body hash.
func (s *Ed25519Signer) Sign(txBodyHash []byte) (Witness, error) {
	if len(txBodyHash) != blake2b.Size256 {
		return Witness{}, fmt.Errorf("body hash must be %d bytes, got %d", blake2b.Size256, len(txBodyHash))
	}
	return Witness{
		VKey:      []byte(s.key.Public().(ed25519.PublicKey)),
		Signature: ed25519.Sign(s.key, txBodyHash),
	}, nil
}

// KeyHash returns the hex verification key hash.
func (s *Ed25519Signer) KeyHash() string {
	return s.keyHash
}
