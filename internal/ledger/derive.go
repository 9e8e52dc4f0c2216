package ledger

import (
	"fmt"
	"math"
)

// GenderMix formats the gender composition of a lineup as "<m>M/<f>F".
func GenderMix(players []Player) string {
	var males, females int
	for _, p := range players {
		switch p.Gender {
		case GenderMale:
			males++
		case GenderFemale:
			females++
		}
	}
	return fmt.Sprintf("%dM/%dF", males, females)
}

// AvgLevel is the mean of the players' ordinal levels, rounded to 1 decimal.
func AvgLevel(players []Player) float64 {
	if len(players) == 0 {
		return 0
	}
	var total int
	for _, p := range players {
		total += int(p.Level)
	}
	return math.Round(float64(total)/float64(len(players))*10) / 10
}
