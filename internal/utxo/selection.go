// Package utxo selects wallet outputs to fund contributions.
package utxo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"vaultflow/internal/chain"
)

// ErrNoUTXOs is returned when the wallet has no outputs at all.
var ErrNoUTXOs = errors.New("wallet has no utxos")

// InsufficientBalanceError means the wallet cannot cover the target lovelace.
type InsufficientBalanceError struct {
	Required  int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need %d lovelace, wallet holds %d", e.Required, e.Available)
}

// Shortfall is the missing lovelace.
func (e *InsufficientBalanceError) Shortfall() int64 {
	return e.Required - e.Available
}

// Requirement is a token the wallet must provide.
type Requirement struct {
	PolicyID  string
	AssetName string
	Quantity  int64
}

// Unit is the indexer unit of the requirement.
func (r Requirement) Unit() string {
	return r.PolicyID + r.AssetName
}

// Missing describes how much of one token the wallet lacks.
type Missing struct {
	Unit      string
	Required  int64
	Available int64
}

// InsufficientAssetsError names every token the wallet cannot provide.
type InsufficientAssetsError struct {
	Missing []Missing
}

func (e *InsufficientAssetsError) Error() string {
	parts := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		parts = append(parts, fmt.Sprintf("%s (need %d, have %d)", m.Unit, m.Required, m.Available))
	}
	return "insufficient assets: " + strings.Join(parts, ", ")
}

// LimitExceededError means the requested tokens are spread over more
// outputs than one transaction may spend.
type LimitExceededError struct {
	Needed int
	Max    int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("selection needs %d utxos, limit is %d", e.Needed, e.Max)
}

// Options bound an asset selection.
type Options struct {
	// MaxUTXOs caps the number of selected outputs. Zero means no cap.
	MaxUTXOs int
	// MinLovelace skips outputs holding less ADA than this; they may not be
	// spendable on their own.
	MinLovelace int64
}

// SelectForLovelace picks the largest outputs first until their lovelace
// covers target.
func SelectForLovelace(utxos []chain.UTXO, target int64) ([]chain.UTXO, error) {
	if len(utxos) == 0 {
		return nil, ErrNoUTXOs
	}

	sorted := make([]chain.UTXO, len(utxos))
	copy(sorted, utxos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Lovelace() > sorted[j].Lovelace()
	})

	var (
		selected []chain.UTXO
		total    int64
	)
	for _, u := range sorted {
		if total >= target {
			break
		}
		selected = append(selected, u)
		total += u.Lovelace()
	}
	if total < target {
		return nil, &InsufficientBalanceError{Required: target, Available: total}
	}
	return selected, nil
}

// SelectForAssets picks outputs that jointly hold every requirement. Each
// requirement is filled from the outputs holding the most of it, reusing
// outputs already picked for earlier requirements.
func SelectForAssets(utxos []chain.UTXO, reqs []Requirement, opts Options) ([]chain.UTXO, error) {
	eligible := make([]chain.UTXO, 0, len(utxos))
	for _, u := range utxos {
		if opts.MinLovelace > 0 && u.Lovelace() < opts.MinLovelace {
			continue
		}
		eligible = append(eligible, u)
	}

	// Check totals first so the error names every missing token at once.
	var missing []Missing
	for _, r := range reqs {
		var have int64
		for _, u := range eligible {
			have += u.QuantityOf(r.Unit())
		}
		if have < r.Quantity {
			missing = append(missing, Missing{Unit: r.Unit(), Required: r.Quantity, Available: have})
		}
	}
	if len(missing) > 0 {
		return nil, &InsufficientAssetsError{Missing: missing}
	}

	picked := map[string]bool{}
	var selected []chain.UTXO
	for _, r := range reqs {
		unit := r.Unit()
		var have int64
		for _, u := range selected {
			have += u.QuantityOf(unit)
		}

		candidates := make([]chain.UTXO, 0)
		for _, u := range eligible {
			if !picked[u.Ref()] && u.QuantityOf(unit) > 0 {
				candidates = append(candidates, u)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].QuantityOf(unit) > candidates[j].QuantityOf(unit)
		})

		for _, u := range candidates {
			if have >= r.Quantity {
				break
			}
			picked[u.Ref()] = true
			selected = append(selected, u)
			have += u.QuantityOf(unit)
		}
	}

	if opts.MaxUTXOs > 0 && len(selected) > opts.MaxUTXOs {
		return nil, &LimitExceededError{Needed: len(selected), Max: opts.MaxUTXOs}
	}
	return selected, nil
}

// Refs returns the output references of utxos.
func Refs(utxos []chain.UTXO) []string {
	out := make([]string, len(utxos))
	for i, u := range utxos {
		out[i] = u.Ref()
	}
	return out
}
