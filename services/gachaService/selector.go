package gachaService

import (
	"gachaCardBot/models"
	"gachaCardBot/services/common"
)

// selectCard picks one card from the pool. A pity draw is restricted to
// cards of exactly SSR rarity (not higher), chosen uniformly; a pool with
// no SSR card fails the pull outright rather than falling back to a
// neighboring rarity. A normal draw is weighted by the entries' relative
// weights.
func (e *Engine) selectCard(entries []poolEntry, isPity bool) (*models.Card, error) {
	if isPity {
		var ssr []int
		for i := range entries {
			if entries[i].Card.Rarity == models.RaritySSR {
				ssr = append(ssr, i)
			}
		}
		if len(ssr) == 0 {
			return nil, common.Preconditionf("pity triggered but pool has no SSR card")
		}
		pick := ssr[e.rng.Intn(len(ssr))]
		return &entries[pick].Card, nil
	}

	weights := make([]float64, len(entries))
	for i := range entries {
		weights[i] = entries[i].Weight
	}
	pick := common.WeightedIndex(e.rng, weights)
	if pick < 0 {
		return nil, common.Preconditionf("pool has no positive weights")
	}
	return &entries[pick].Card, nil
}
