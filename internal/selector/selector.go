package selector

import (
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/kritsw/courtledger/internal/ledger"
)

// Balanced finds the fairest 4-player grouping in the pool: every 4-element
// subset is scored by its best 2v2 split, all globally optimal pairings are
// collected, and one is picked uniformly at random. Full enumeration keeps
// the result globally optimal; pools in this domain are small (tens of
// players) so C(n,4) is acceptable.
func Balanced(pool []ledger.Player) (*Pairing, error) {
	if len(pool) < 4 {
		return nil, ErrInsufficientPlayers
	}

	var (
		best    []Pairing
		minDiff = -1
	)
	n := len(pool)
	for i := 0; i < n-3; i++ {
		for j := i + 1; j < n-2; j++ {
			for k := j + 1; k < n-1; k++ {
				for l := k + 1; l < n; l++ {
					split := bestSplit(pool[i], pool[j], pool[k], pool[l])
					switch {
					case minDiff == -1 || split.Diff < minDiff:
						minDiff = split.Diff
						best = best[:0]
						best = append(best, split)
					case split.Diff == minDiff:
						best = append(best, split)
					}
				}
			}
		}
	}

	chosen := best[rand.Intn(len(best))]
	log.Debug("Balanced selection", "candidates", len(best), "diff", chosen.Diff)
	return &chosen, nil
}

// bestSplit evaluates the three 2v2 partitions of a 4-player subset and
// returns the one with the smallest level difference.
func bestSplit(p1, p2, p3, p4 ledger.Player) Pairing {
	l1, l2, l3, l4 := int(p1.Level), int(p2.Level), int(p3.Level), int(p4.Level)
	splits := []Pairing{
		{TeamA: [2]ledger.Player{p1, p2}, TeamB: [2]ledger.Player{p3, p4}, Diff: abs(l1 + l2 - l3 - l4)},
		{TeamA: [2]ledger.Player{p1, p3}, TeamB: [2]ledger.Player{p2, p4}, Diff: abs(l1 + l3 - l2 - l4)},
		{TeamA: [2]ledger.Player{p1, p4}, TeamB: [2]ledger.Player{p2, p3}, Diff: abs(l1 + l4 - l2 - l3)},
	}
	best := splits[0]
	for _, s := range splits[1:] {
		if s.Diff < best.Diff {
			best = s
		}
	}
	return best
}

// Suggest picks 4 players at random after coarse gender/level filtering,
// with no balancing. A level of 0 means any level. When the filtered pool
// cannot satisfy the requested composition it falls back to any 4 players.
func Suggest(pool []ledger.Player, gender GenderFilter, level ledger.Level) ([]ledger.Player, error) {
	candidates := pool
	if level != 0 {
		candidates = nil
		for _, p := range pool {
			if p.Level == level {
				candidates = append(candidates, p)
			}
		}
	}
	if len(candidates) < 4 {
		return nil, ErrInsufficientPlayers
	}

	shuffled := make([]ledger.Player, len(candidates))
	copy(shuffled, candidates)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	switch gender {
	case GenderMixed:
		var males, females []ledger.Player
		for _, p := range shuffled {
			switch p.Gender {
			case ledger.GenderMale:
				males = append(males, p)
			case ledger.GenderFemale:
				females = append(females, p)
			}
		}
		if len(males) >= 2 && len(females) >= 2 {
			return append(males[:2:2], females[:2]...), nil
		}
	case GenderMale, GenderFemale:
		var matched []ledger.Player
		for _, p := range shuffled {
			if string(p.Gender) == string(gender) {
				matched = append(matched, p)
			}
		}
		if len(matched) >= 4 {
			return matched[:4], nil
		}
	}
	return shuffled[:4], nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
