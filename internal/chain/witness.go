package chain

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

const (
	witnessKeyVKey = 0
	setTag         = 258
)

type vkeyWitness struct {
	_         struct{} `cbor:",toarray"`
	VKey      []byte
	Signature []byte
}

var canonicalEnc = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// TxHash returns the hex transaction id: the blake2b-256 hash of the body
// bytes exactly as they appear in the encoded transaction.
func TxHash(cborHex string) (string, error) {
	parts, err := decodeTx(cborHex)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(parts[0])
	return hex.EncodeToString(sum[:]), nil
}

// AddWitness signs the transaction body with signer and appends the vkey
// witness to the witness set. The body bytes are left untouched so the
// transaction id does not change. Adding a key that already signed is a no-op.
func AddWitness(cborHex string, signer Signer) (string, error) {
	parts, err := decodeTx(cborHex)
	if err != nil {
		return "", err
	}

	bodyHash := blake2b.Sum256(parts[0])
	w, err := signer.Sign(bodyHash[:])
	if err != nil {
		return "", fmt.Errorf("signing tx body: %w", err)
	}

	witnessSet := map[uint64]cbor.RawMessage{}
	if err := cbor.Unmarshal(parts[1], &witnessSet); err != nil {
		return "", fmt.Errorf("decoding witness set: %w", err)
	}

	var existing []vkeyWitness
	tagged := false
	if raw, ok := witnessSet[witnessKeyVKey]; ok {
		existing, tagged, err = decodeVKeyWitnesses(raw)
		if err != nil {
			return "", err
		}
	}

	for _, e := range existing {
		if bytes.Equal(e.VKey, w.VKey) {
			return cborHex, nil
		}
	}
	existing = append(existing, vkeyWitness{VKey: w.VKey, Signature: w.Signature})

	var encoded []byte
	if tagged {
		encoded, err = canonicalEnc.Marshal(cbor.Tag{Number: setTag, Content: existing})
	} else {
		encoded, err = canonicalEnc.Marshal(existing)
	}
	if err != nil {
		return "", fmt.Errorf("encoding vkey witnesses: %w", err)
	}
	witnessSet[witnessKeyVKey] = encoded

	ws, err := canonicalEnc.Marshal(witnessSet)
	if err != nil {
		return "", fmt.Errorf("encoding witness set: %w", err)
	}
	parts[1] = ws

	out, err := canonicalEnc.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("encoding tx: %w", err)
	}
	return hex.EncodeToString(out), nil
}

// VKeyWitnessCount returns how many vkey witnesses the transaction carries.
func VKeyWitnessCount(cborHex string) (int, error) {
	parts, err := decodeTx(cborHex)
	if err != nil {
		return 0, err
	}
	witnessSet := map[uint64]cbor.RawMessage{}
	if err := cbor.Unmarshal(parts[1], &witnessSet); err != nil {
		return 0, fmt.Errorf("decoding witness set: %w", err)
	}
	raw, ok := witnessSet[witnessKeyVKey]
	if !ok {
		return 0, nil
	}
	ws, _, err := decodeVKeyWitnesses(raw)
	return len(ws), err
}

func decodeTx(cborHex string) ([]cbor.RawMessage, error) {
	raw, err := hex.DecodeString(cborHex)
	if err != nil {
		return nil, fmt.Errorf("decoding tx hex: %w", err)
	}
	var parts []cbor.RawMessage
	if err := cbor.Unmarshal(raw, &parts); err != nil {
		return nil, fmt.Errorf("decoding tx cbor: %w", err)
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("tx has %d top-level items, want at least 2", len(parts))
	}
	return parts, nil
}

// decodeVKeyWitnesses reads the vkey witness list, which newer eras wrap in
// the set tag.
func decodeVKeyWitnesses(raw cbor.RawMessage) ([]vkeyWitness, bool, error) {
	var ws []vkeyWitness
	if len(raw) > 0 && raw[0]>>5 == 6 {
		var tag cbor.RawTag
		if err := cbor.Unmarshal(raw, &tag); err != nil {
			return nil, false, fmt.Errorf("decoding tagged witnesses: %w", err)
		}
		if err := cbor.Unmarshal(tag.Content, &ws); err != nil {
			return nil, false, fmt.Errorf("decoding vkey witnesses: %w", err)
		}
		return ws, tag.Number == setTag, nil
	}
	if err := cbor.Unmarshal(raw, &ws); err != nil {
		return nil, false, fmt.Errorf("decoding vkey witnesses: %w", err)
	}
	return ws, false, nil
}
