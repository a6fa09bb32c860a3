package analytics

import "time"

type Summary struct {
	Games           int            `json:"games"`
	ImpostorWins    int            `json:"impostorWins"`
	GroupWins       int            `json:"groupWins"`
	Forced          int            `json:"forced"`
	ImpostorWinRate float64        `json:"impostorWinRate"` // percentage
	Categories      []CategoryStat `json:"categories"`
}

type CategoryStat struct {
	Category     string `json:"category"`
	Games        int    `json:"games"`
	ImpostorWins int    `json:"impostorWins"`
}

type RecentGame struct {
	ID           int64     `json:"id"`
	RoomCode     string    `json:"roomCode"`
	Category     string    `json:"category"`
	Subtopic     string    `json:"subtopic,omitempty"`
	Word         string    `json:"word"`
	ImpostorName string    `json:"impostorName"`
	ImpostorWon  bool      `json:"impostorWon"`
	Reason       string    `json:"reason"`
	Rounds       int       `json:"rounds"`
	EndedAt      time.Time `json:"endedAt"`
}

type LeaderboardEntry struct {
	PlayerName   string  `json:"playerName"`
	Points       int     `json:"points"`
	GamesPlayed  int     `json:"gamesPlayed"`
	ImpostorRuns int     `json:"impostorRuns"`
	ImpostorWins int     `json:"impostorWins"`
	GroupWins    int     `json:"groupWins"`
	Rank         int     `json:"rank"`
	Badges       []Badge `json:"badges,omitempty"`
}
