// Package chain is the gateway to the external transaction builder and the
// read-only chain indexer. It carries no business rules: it moves specs and
// CBOR across the wire and turns free-text failures into typed errors.
package chain

import (
	"fmt"
	"strconv"
)

// Lovelace is the indexer unit for ADA.
const Lovelace = "lovelace"

// Amount is a quantity of one unit (lovelace or policy id + asset name).
type Amount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// Int returns the quantity as an integer; malformed values read as zero.
func (a Amount) Int() int64 {
	n, err := strconv.ParseInt(a.Quantity, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// UTXO is an unspent output as reported by the indexer.
type UTXO struct {
	Address     string   `json:"address"`
	TxHash      string   `json:"tx_hash"`
	OutputIndex int      `json:"output_index"`
	Amount      []Amount `json:"amount"`
	Block       string   `json:"block,omitempty"`
	InlineDatum *string  `json:"inline_datum,omitempty"`
}

// Ref returns the output reference in "hash#index" form.
func (u UTXO) Ref() string {
	return FormatRef(u.TxHash, u.OutputIndex)
}

// Lovelace returns the ADA held by the output.
func (u UTXO) Lovelace() int64 {
	return u.QuantityOf(Lovelace)
}

// QuantityOf returns how much of unit the output holds.
func (u UTXO) QuantityOf(unit string) int64 {
	var total int64
	for _, a := range u.Amount {
		if a.Unit == unit {
			total += a.Int()
		}
	}
	return total
}

// FormatRef formats an output reference.
func FormatRef(txHash string, index int) string {
	return fmt.Sprintf("%s#%d", txHash, index)
}

// AssetName is a hex or utf8 encoded token name.
type AssetName struct {
	Name   string `json:"name"`
	Format string `json:"format"`
}

// HexName builds a hex formatted AssetName.
func HexName(name string) AssetName {
	return AssetName{Name: name, Format: "hex"}
}

// MintEntry mints (positive) or burns (negative) a quantity of one token.
type MintEntry struct {
	Version   string    `json:"version"`
	AssetName AssetName `json:"assetName"`
	PolicyID  string    `json:"policyId"`
	Type      string    `json:"type"`
	Quantity  int64     `json:"quantity"`
}

// Redeemer is the argument passed to a script.
type Redeemer struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// ScriptInteraction invokes a script to mint or spend.
type ScriptInteraction struct {
	Purpose   string     `json:"purpose"`
	Hash      string     `json:"hash"`
	OutputRef *OutputRef `json:"outputRef,omitempty"`
	Redeemer  Redeemer   `json:"redeemer"`
}

// OutputRef identifies an output consumed by a spend interaction.
type OutputRef struct {
	TxHash      string `json:"txHash"`
	OutputIndex int    `json:"index"`
}

// OutputAsset is a native asset carried by an output.
type OutputAsset struct {
	PolicyID  string    `json:"policyId"`
	AssetName AssetName `json:"assetName"`
	Quantity  int64     `json:"quantity"`
}

// Datum is an inline datum attached to an output.
type Datum struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Output is one transaction output.
type Output struct {
	Address  string        `json:"address"`
	Lovelace int64         `json:"lovelace,omitempty"`
	Assets   []OutputAsset `json:"assets,omitempty"`
	Datum    *Datum        `json:"datum,omitempty"`
}

// Validity bounds the transaction in unix milliseconds.
type Validity struct {
	ValidFrom int64 `json:"validFrom,omitempty"`
	ValidTo   int64 `json:"validTo,omitempty"`
}

// TxSpec is the transaction description sent to the builder.
type TxSpec struct {
	ChangeAddress      string              `json:"changeAddress"`
	UTXOs              []string            `json:"utxos,omitempty"`
	Mint               []MintEntry         `json:"mint,omitempty"`
	ScriptInteractions []ScriptInteraction `json:"scriptInteractions,omitempty"`
	Outputs            []Output            `json:"outputs,omitempty"`
	ReferenceInputs    []string            `json:"referenceInputs,omitempty"`
	RequiredSigners    []string            `json:"requiredSigners,omitempty"`
	Validity           *Validity           `json:"validityInterval,omitempty"`
}

// BuildResult holds the built transaction. Complete carries an empty witness
// set ready for signing; Partial is the unsigned body.
type BuildResult struct {
	Complete string `json:"complete"`
	Partial  string `json:"partial"`
}

// SubmitRequest is a fully signed transaction plus detached signatures.
type SubmitRequest struct {
	Transaction string   `json:"transaction"`
	Signatures  []string `json:"signatures,omitempty"`
}

// SubmitResult is the builder's answer to a successful submission.
type SubmitResult struct {
	TxHash string `json:"txHash"`
}

// TxInfo is the confirmation view of a transaction.
type TxInfo struct {
	Hash          string `json:"hash"`
	Block         string `json:"block"`
	BlockHeight   int64  `json:"block_height"`
	BlockTime     int64  `json:"block_time"`
	Index         int    `json:"index"`
	ValidContract bool   `json:"valid_contract"`
}

// AddressTx is one entry of an address's transaction history.
type AddressTx struct {
	TxHash      string `json:"tx_hash"`
	TxIndex     int    `json:"tx_index"`
	BlockHeight int64  `json:"block_height"`
	BlockTime   int64  `json:"block_time"`
}
