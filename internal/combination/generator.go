// Package combination enumerates multi-pick PMU wagers (tiercé, quinté)
// over a probability-ranked prediction list and prices them.
package combination

import (
	"math"
	"sort"

	"github.com/yourusername/pmu-edge/internal/models"
)

// Config bounds the candidate pools and fixes the payout-estimation policy.
// The pool multipliers and house takes are assumptions about PMU pools, not
// derived from live market data.
type Config struct {
	OrderedPoolSize   int // entrants considered for ordered triples
	UnorderedPoolSize int // entrants considered for unordered triples
	QuintePoolSize    int // entrants considered for quintuples
	DefaultLimit      int

	TierceOrdreMultiplier    float64
	TierceOrdreHouseTake     float64
	TierceDesordreMultiplier float64
	TierceDesordreHouseTake  float64
	QuinteMultiplier         float64
	QuinteHouseTake          float64
}

// DefaultConfig returns the production policy
func DefaultConfig() Config {
	return Config{
		OrderedPoolSize:   8,
		UnorderedPoolSize: 10,
		QuintePoolSize:    10,
		DefaultLimit:      10,

		TierceOrdreMultiplier:    1.3,
		TierceOrdreHouseTake:     0.70,
		TierceDesordreMultiplier: 1.1,
		TierceDesordreHouseTake:  0.75,
		QuinteMultiplier:         1.5,
		QuinteHouseTake:          0.70,
	}
}

// Generator enumerates and prices combinations. Stateless and safe for
// concurrent use.
type Generator struct {
	cfg Config
}

// NewGenerator creates a combination generator
func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// GenerateTierceOrdre enumerates every ordered selection of 3 distinct
// entrants from the top pool and computes the exact sequential conditional
// probability under the removal model:
// P(A 1st) x P(B 2nd | A placed) x P(C 3rd | A,B placed).
// Fields with fewer than 3 entrants yield an empty result.
func (g *Generator) GenerateTierceOrdre(preds []models.Prediction, limit int) []models.Combination {
	pool := topN(preds, g.cfg.OrderedPoolSize)
	n := len(pool)
	if n < 3 {
		return nil
	}
	total := probabilityMass(pool)

	combos := make([]models.Combination, 0, n*(n-1)*(n-2))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			for k := 0; k < n; k++ {
				if k == i || k == j {
					continue
				}
				prob := sequentialProbability([]float64{pool[i].Probability, pool[j].Probability, pool[k].Probability}, total)
				combos = append(combos, models.Combination{
					Type:          models.TierceOrdre,
					HorseIDs:      []string{pool[i].HorseID, pool[j].HorseID, pool[k].HorseID},
					HorseNames:    []string{pool[i].HorseName, pool[j].HorseName, pool[k].HorseName},
					Probability:   prob * 100,
					EstimatedOdds: g.estimateOdds(prob, models.TierceOrdre),
					BaseRanks:     []int{i + 1, j + 1, k + 1},
				})
			}
		}
	}

	return topByProbability(combos, g.limitOrDefault(limit))
}

// GenerateTierceDesordre enumerates every unordered triple from the top
// pool. The joint probability is the exact sum of the sequential conditional
// probability over all 6 orderings of the triple.
func (g *Generator) GenerateTierceDesordre(preds []models.Prediction, limit int) []models.Combination {
	pool := topN(preds, g.cfg.UnorderedPoolSize)
	n := len(pool)
	if n < 3 {
		return nil
	}
	total := probabilityMass(pool)

	var combos []models.Combination
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			for k := j + 1; k < n; k++ {
				prob := trioAnyOrderProbability(pool[i].Probability, pool[j].Probability, pool[k].Probability, total)
				combos = append(combos, models.Combination{
					Type:          models.TierceDesordre,
					HorseIDs:      []string{pool[i].HorseID, pool[j].HorseID, pool[k].HorseID},
					HorseNames:    []string{pool[i].HorseName, pool[j].HorseName, pool[k].HorseName},
					Probability:   math.Min(100, prob*100),
					EstimatedOdds: g.estimateOdds(prob, models.TierceDesordre),
					BaseRanks:     []int{i + 1, j + 1, k + 1},
				})
			}
		}
	}

	return topByProbability(combos, g.limitOrDefault(limit))
}

// GenerateQuinteDesordre enumerates unordered 5-subsets from a bounded
// window of the top pool. The joint probability is approximated by one
// sequential ordering multiplied by 5! = 120; unlike the triple case this
// is not the exact sum over orderings and can drift for skewed
// distributions. Kept deliberately, matching the pricing the rest of the
// pipeline was tuned against.
func (g *Generator) GenerateQuinteDesordre(preds []models.Prediction, limit int) []models.Combination {
	pool := topN(preds, g.cfg.QuintePoolSize)
	n := len(pool)
	if n < 5 {
		return nil
	}
	total := probabilityMass(pool)

	var combos []models.Combination
	for i := 0; i < min(n-4, 6); i++ {
		for j := i + 1; j < min(n-3, 7); j++ {
			for k := j + 1; k < min(n-2, 8); k++ {
				for l := k + 1; l < min(n-1, 9); l++ {
					for m := l + 1; m < min(n, 10); m++ {
						seq := sequentialProbability([]float64{
							pool[i].Probability, pool[j].Probability, pool[k].Probability,
							pool[l].Probability, pool[m].Probability,
						}, total)
						prob := seq * 120
						combos = append(combos, models.Combination{
							Type:          models.QuinteDesordre,
							HorseIDs:      []string{pool[i].HorseID, pool[j].HorseID, pool[k].HorseID, pool[l].HorseID, pool[m].HorseID},
							HorseNames:    []string{pool[i].HorseName, pool[j].HorseName, pool[k].HorseName, pool[l].HorseName, pool[m].HorseName},
							Probability:   math.Min(100, prob*100),
							EstimatedOdds: g.estimateOdds(prob, models.QuinteDesordre),
							BaseRanks:     []int{i + 1, j + 1, k + 1, l + 1, m + 1},
						})
					}
				}
			}
		}
	}

	return topByProbability(combos, g.limitOrDefault(limit))
}

// sequentialProbability computes the joint probability of the given
// entrants finishing in the listed order under the removal model: each step
// divides by the probability mass remaining after earlier placings. Zero
// remaining mass short-circuits to zero instead of dividing.
func sequentialProbability(probs []float64, total float64) float64 {
	joint := 1.0
	remaining := total
	for _, p := range probs {
		if remaining <= 0 {
			return 0
		}
		joint *= p / remaining
		remaining -= p
	}
	return joint
}

var trioOrderings = [6][3]int{
	{0, 1, 2}, {0, 2, 1}, {1, 0, 2},
	{1, 2, 0}, {2, 0, 1}, {2, 1, 0},
}

// trioAnyOrderProbability sums the sequential conditional probability over
// all 6 orderings: the exact probability the three land in the top 3 in any
// order.
func trioAnyOrderProbability(pA, pB, pC, total float64) float64 {
	if total <= 0 {
		return 0
	}
	probs := [3]float64{pA, pB, pC}
	var sum float64
	for _, ordering := range trioOrderings {
		sum += sequentialProbability([]float64{probs[ordering[0]], probs[ordering[1]], probs[ordering[2]]}, total)
	}
	return sum
}

// estimateOdds approximates the pool payout per unit stake: fair odds
// adjusted by the bet type's pool multiplier and house take.
func (g *Generator) estimateOdds(probability float64, betType models.CombinationType) float64 {
	if probability <= 0 {
		return 0
	}
	base := 1 / probability
	var odds float64
	switch betType {
	case models.TierceOrdre:
		odds = base * g.cfg.TierceOrdreMultiplier * g.cfg.TierceOrdreHouseTake
	case models.TierceDesordre:
		odds = base * g.cfg.TierceDesordreMultiplier * g.cfg.TierceDesordreHouseTake
	default:
		odds = base * g.cfg.QuinteMultiplier * g.cfg.QuinteHouseTake
	}
	return math.Round(odds*10) / 10
}

func (g *Generator) limitOrDefault(limit int) int {
	if limit <= 0 {
		return g.cfg.DefaultLimit
	}
	return limit
}

func topN(preds []models.Prediction, n int) []models.Prediction {
	if len(preds) <= n {
		return preds
	}
	return preds[:n]
}

func probabilityMass(preds []models.Prediction) float64 {
	var total float64
	for _, p := range preds {
		total += p.Probability
	}
	return total
}

func topByProbability(combos []models.Combination, limit int) []models.Combination {
	sort.SliceStable(combos, func(i, j int) bool {
		return combos[i].Probability > combos[j].Probability
	})
	if len(combos) > limit {
		combos = combos[:limit]
	}
	return combos
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
