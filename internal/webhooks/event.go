package webhooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// EventTypeTransaction is the only event type the reconciler acts on.
const EventTypeTransaction = "transaction"

// ErrMalformedEvent is returned for bodies that are not a webhook event.
var ErrMalformedEvent = errors.New("malformed webhook event")

// Amount is one unit and its quantity in an output.
type Amount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// TxOutput is an output of an event transaction.
type TxOutput struct {
	Address     string   `json:"address"`
	Amount      []Amount `json:"amount"`
	OutputIndex int      `json:"output_index"`
}

// TxInput is an input of an event transaction.
type TxInput struct {
	Address     string   `json:"address"`
	Amount      []Amount `json:"amount"`
	TxHash      string   `json:"tx_hash"`
	OutputIndex int      `json:"output_index"`
}

// TxMeta is the transaction header of an event.
type TxMeta struct {
	Hash        string `json:"hash"`
	Block       string `json:"block"`
	BlockHeight int64  `json:"block_height"`
	BlockTime   int64  `json:"block_time"`
	Index       int    `json:"index"`
	// ValidContract is nil when the sender omitted it.
	ValidContract *bool `json:"valid_contract"`
}

// TxEvent is one transaction inside a delivery.
type TxEvent struct {
	Tx      TxMeta     `json:"tx"`
	Inputs  []TxInput  `json:"inputs"`
	Outputs []TxOutput `json:"outputs"`
}

// Event is one webhook delivery.
type Event struct {
	ID        string    `json:"id"`
	WebhookID string    `json:"webhook_id"`
	Type      string    `json:"type"`
	Created   int64     `json:"created"`
	Payload   []TxEvent `json:"payload"`
}

// ParseEvent decodes a raw delivery body.
func ParseEvent(raw []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if strings.TrimSpace(evt.Type) == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}
	return &evt, nil
}
