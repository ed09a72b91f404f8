package distribution

import (
	"errors"
	"fmt"
	"sort"

	"vaultflow/internal/models"

	"github.com/shopspring/decimal"
)

// ErrZeroMultiplier is returned when a positively priced asset would floor
// to a multiplier of zero, which would grant its contributors nothing.
var ErrZeroMultiplier = errors.New("multiplier floors to zero for a priced asset")

// GroupMultipliers derives multiplier triples for assets. A policy whose
// assets all share one price and precision yields a single policy-level
// triple with a nil asset name; any other policy yields one triple per
// distinct (asset name, price, decimals). ADA contributions carry no
// multiplier. The multiplier is vault token base units per whole asset unit,
// so a claim is Multiplier * quantity / 10^Decimals.
func GroupMultipliers(assets []models.Asset, referencePrice decimal.Decimal, vtDecimals int) ([]models.Multiplier, error) {
	type priced struct {
		name     string
		price    decimal.Decimal
		decimals int
	}
	byPolicy := map[string][]priced{}
	for _, a := range assets {
		if a.Type == models.AssetTypeADA {
			continue
		}
		byPolicy[a.PolicyID] = append(byPolicy[a.PolicyID], priced{
			name:     a.AssetName,
			price:    a.UnitPrice(),
			decimals: a.Decimals,
		})
	}

	policies := make([]string, 0, len(byPolicy))
	for p := range byPolicy {
		policies = append(policies, p)
	}
	sort.Strings(policies)

	multiplier := func(e priced) (int64, error) {
		m, err := VTAmount(e.price, referencePrice, vtDecimals)
		if err != nil {
			return 0, err
		}
		if m == 0 && e.price.IsPositive() {
			return 0, fmt.Errorf("%w: %s priced at %s", ErrZeroMultiplier, e.name, e.price)
		}
		return m, nil
	}

	var out []models.Multiplier
	for _, policy := range policies {
		entries := byPolicy[policy]

		single := true
		for _, e := range entries[1:] {
			if !e.price.Equal(entries[0].price) || e.decimals != entries[0].decimals {
				single = false
				break
			}
		}

		if single {
			m, err := multiplier(entries[0])
			if err != nil {
				return nil, err
			}
			out = append(out, models.Multiplier{PolicyID: policy, Multiplier: m, Decimals: entries[0].decimals})
			continue
		}

		sort.SliceStable(entries, func(i, j int) bool { return entries[i].name < entries[j].name })
		seen := map[string]bool{}
		for _, e := range entries {
			key := fmt.Sprintf("%s|%s|%d", e.name, e.price.String(), e.decimals)
			if seen[key] {
				continue
			}
			seen[key] = true
			m, err := multiplier(e)
			if err != nil {
				return nil, err
			}
			name := e.name
			out = append(out, models.Multiplier{PolicyID: policy, AssetName: &name, Multiplier: m, Decimals: e.decimals})
		}
	}
	return out, nil
}

// MergeMultipliers appends added to existing, skipping exact duplicates.
// Existing entries are never modified or removed.
func MergeMultipliers(existing, added []models.Multiplier) []models.Multiplier {
	merged := make([]models.Multiplier, 0, len(existing)+len(added))
	merged = append(merged, existing...)
	for _, a := range added {
		dup := false
		for _, m := range merged {
			if sameMultiplier(m, a) {
				dup = true
				break
			}
		}
		if !dup {
			merged = append(merged, a)
		}
	}
	return merged
}

func sameMultiplier(a, b models.Multiplier) bool {
	if a.PolicyID != b.PolicyID || a.Multiplier != b.Multiplier || a.Decimals != b.Decimals {
		return false
	}
	if a.AssetName == nil || b.AssetName == nil {
		return a.AssetName == nil && b.AssetName == nil
	}
	return *a.AssetName == *b.AssetName
}

// TotalValueAda sums the ADA value of assets.
func TotalValueAda(assets []models.Asset) decimal.Decimal {
	total := decimal.Zero
	for i := range assets {
		total = total.Add(assets[i].ValueAda())
	}
	return total
}
