package ledger

// PlayerCost is one row of a session's cost breakdown.
type PlayerCost struct {
	Player   Player  `json:"player"`
	Shuttles float64 `json:"shuttles"`
	Amount   float64 `json:"amount"`
	Paid     bool    `json:"paid"`
}

// PlayerShuttles sums shuttlesUsed across the games the player appears in.
func PlayerShuttles(games []GameRecord, playerID string) float64 {
	var total float64
	for _, g := range games {
		for _, id := range g.PlayerIDs {
			if id == playerID {
				total += g.ShuttlesUsed
				break
			}
		}
	}
	return total
}

// PlayerSessionCost is the flat court fee plus the player's quarter share of
// the shuttles used in their games.
func PlayerSessionCost(settings Settings, playerShuttles float64) float64 {
	return settings.CourtFee + playerShuttles*settings.ShuttlePrice/4
}

// SessionTotalCost charges the court fee per present player plus the full
// shuttle spend of the session.
func SessionTotalCost(settings Settings, presentCount int, games []GameRecord) float64 {
	var shuttles float64
	for _, g := range games {
		shuttles += g.ShuttlesUsed
	}
	return float64(presentCount)*settings.CourtFee + shuttles*settings.ShuttlePrice
}

// SessionCosts builds the per-player breakdown for every present player of a
// session, using that session's payment map.
func SessionCosts(settings Settings, sess *Session, games []GameRecord, players []Player) []PlayerCost {
	byID := make(map[string]Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	costs := make([]PlayerCost, 0, len(sess.PresentPlayerIDs))
	for _, id := range sess.PresentPlayerIDs {
		p, ok := byID[id]
		if !ok {
			continue
		}
		shuttles := PlayerShuttles(games, id)
		costs = append(costs, PlayerCost{
			Player:   p,
			Shuttles: shuttles,
			Amount:   PlayerSessionCost(settings, shuttles),
			Paid:     sess.PaymentStatus[id],
		})
	}
	return costs
}
