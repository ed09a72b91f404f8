package webhooks

import (
	"strings"

	"vaultflow/internal/models"
)

// StateTransition is the status a transaction should move to, derived from
// one event. It is applied later by the state machine.
type StateTransition struct {
	TxHash      string
	TxIndex     int
	Status      models.TransactionStatus
	BlockHeight int64
}

// IsRelevant reports whether any input or output carries a unit ending in
// receiptSuffix, the marker minted by vault scripts. Claims burn the receipt,
// so it only shows up on their inputs.
func IsRelevant(ev TxEvent, receiptSuffix string) bool {
	if receiptSuffix == "" {
		return false
	}
	for _, in := range ev.Inputs {
		if carriesReceipt(in.Amount, receiptSuffix) {
			return true
		}
	}
	for _, out := range ev.Outputs {
		if carriesReceipt(out.Amount, receiptSuffix) {
			return true
		}
	}
	return false
}

func carriesReceipt(amounts []Amount, receiptSuffix string) bool {
	for _, a := range amounts {
		if a.Unit != "lovelace" && strings.HasSuffix(a.Unit, receiptSuffix) {
			return true
		}
	}
	return false
}

// DeriveStatus maps block inclusion and script validity to a status.
func DeriveStatus(meta TxMeta) models.TransactionStatus {
	switch {
	case meta.Block == "":
		return models.TransactionStatusPending
	case meta.ValidContract != nil && *meta.ValidContract:
		return models.TransactionStatusConfirmed
	case meta.ValidContract != nil && !*meta.ValidContract:
		return models.TransactionStatusFailed
	default:
		return models.TransactionStatusPending
	}
}

// DeriveTransitions returns one transition per relevant transaction in evt.
// Non-transaction events and events without the receipt marker yield none.
func DeriveTransitions(evt *Event, receiptSuffix string) []StateTransition {
	if evt == nil || evt.Type != EventTypeTransaction {
		return nil
	}
	var out []StateTransition
	for _, ev := range evt.Payload {
		if ev.Tx.Hash == "" || !IsRelevant(ev, receiptSuffix) {
			continue
		}
		out = append(out, StateTransition{
			TxHash:      ev.Tx.Hash,
			TxIndex:     ev.Tx.Index,
			Status:      DeriveStatus(ev.Tx),
			BlockHeight: ev.Tx.BlockHeight,
		})
	}
	return out
}
