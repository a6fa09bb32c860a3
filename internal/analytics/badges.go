package analytics

import "sort"

type BadgeID string

const (
	BadgeVeteran     BadgeID = "veteran"
	BadgeDeceiver    BadgeID = "deceiver"
	BadgeDetective   BadgeID = "detective"
	BadgeUntouchable BadgeID = "untouchable"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeVeteran:     {ID: BadgeVeteran, Name: "Veterano", Description: "Jugó 10+ partidas", Icon: "🏅"},
	BadgeDeceiver:    {ID: BadgeDeceiver, Name: "Maestro del engaño", Description: "Ganó 3+ partidas como impostor", Icon: "🎭"},
	BadgeDetective:   {ID: BadgeDetective, Name: "Detective", Description: "Atrapó al impostor en 5+ partidas", Icon: "🔎"},
	BadgeUntouchable: {ID: BadgeUntouchable, Name: "Intocable", Description: "Ganó todas sus partidas como impostor (mínimo 3)", Icon: "👻"},
}

// EvaluateBadges checks which badges a player earned across their history.
func EvaluateBadges(e LeaderboardEntry) []Badge {
	var earned []Badge

	if e.GamesPlayed >= 10 {
		earned = append(earned, AllBadges[BadgeVeteran])
	}
	if e.ImpostorWins >= 3 {
		earned = append(earned, AllBadges[BadgeDeceiver])
	}
	if e.GroupWins >= 5 {
		earned = append(earned, AllBadges[BadgeDetective])
	}
	if e.ImpostorRuns >= 3 && e.ImpostorWins == e.ImpostorRuns {
		earned = append(earned, AllBadges[BadgeUntouchable])
	}

	return earned
}

// WinRate returns wins/games as a percentage rounded to one decimal.
func WinRate(wins, games int) float64 {
	if games <= 0 {
		return 0
	}
	pct := float64(wins) / float64(games) * 1000
	return float64(int(pct+0.5)) / 10
}

// Rank orders entries by points, then fewer games played, then name, and
// assigns dense ranks so tied players share a position.
func Rank(entries []LeaderboardEntry) []LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GamesPlayed != b.GamesPlayed {
			return a.GamesPlayed < b.GamesPlayed
		}
		return a.PlayerName < b.PlayerName
	})
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Points != entries[i-1].Points || entries[i].GamesPlayed != entries[i-1].GamesPlayed {
			rank++
		}
		entries[i].Rank = rank
		entries[i].Badges = EvaluateBadges(entries[i])
	}
	return entries
}
