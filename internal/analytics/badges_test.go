package analytics

import "testing"

func TestEvaluateBadges_Veteran(t *testing.T) {
	if !hasBadge(EvaluateBadges(LeaderboardEntry{GamesPlayed: 10}), BadgeVeteran) {
		t.Error("should earn Veterano with 10 games")
	}
	if hasBadge(EvaluateBadges(LeaderboardEntry{GamesPlayed: 9}), BadgeVeteran) {
		t.Error("should not earn Veterano with 9 games")
	}
}

func TestEvaluateBadges_Deceiver(t *testing.T) {
	badges := EvaluateBadges(LeaderboardEntry{ImpostorRuns: 5, ImpostorWins: 3})
	if !hasBadge(badges, BadgeDeceiver) {
		t.Error("should earn Maestro del engaño with 3 impostor wins")
	}
	if hasBadge(badges, BadgeUntouchable) {
		t.Error("should not earn Intocable after losing as impostor")
	}
}

func TestEvaluateBadges_Detective(t *testing.T) {
	if !hasBadge(EvaluateBadges(LeaderboardEntry{GroupWins: 5}), BadgeDetective) {
		t.Error("should earn Detective with 5 group wins")
	}
	if hasBadge(EvaluateBadges(LeaderboardEntry{GroupWins: 4}), BadgeDetective) {
		t.Error("should not earn Detective with 4 group wins")
	}
}

func TestEvaluateBadges_Untouchable(t *testing.T) {
	badges := EvaluateBadges(LeaderboardEntry{ImpostorRuns: 3, ImpostorWins: 3})
	if !hasBadge(badges, BadgeUntouchable) {
		t.Error("should earn Intocable with 3 of 3 impostor wins")
	}
	if hasBadge(EvaluateBadges(LeaderboardEntry{}), BadgeUntouchable) {
		t.Error("should not earn Intocable without impostor games")
	}
}

func TestWinRate(t *testing.T) {
	tests := []struct {
		wins, games int
		want        float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{5, 5, 100},
	}
	for _, tt := range tests {
		if got := WinRate(tt.wins, tt.games); got != tt.want {
			t.Errorf("WinRate(%d, %d) = %v, want %v", tt.wins, tt.games, got, tt.want)
		}
	}
}

func TestRank_OrdersAndSharesTies(t *testing.T) {
	entries := Rank([]LeaderboardEntry{
		{PlayerName: "Beto", Points: 4, GamesPlayed: 3},
		{PlayerName: "Ana", Points: 7, GamesPlayed: 4},
		{PlayerName: "Dani", Points: 4, GamesPlayed: 3},
		{PlayerName: "Carla", Points: 4, GamesPlayed: 5},
	})

	wantNames := []string{"Ana", "Beto", "Dani", "Carla"}
	wantRanks := []int{1, 2, 2, 3}
	for i := range entries {
		if entries[i].PlayerName != wantNames[i] {
			t.Errorf("entries[%d].PlayerName = %q, want %q", i, entries[i].PlayerName, wantNames[i])
		}
		if entries[i].Rank != wantRanks[i] {
			t.Errorf("entries[%d].Rank = %d, want %d", i, entries[i].Rank, wantRanks[i])
		}
	}
}

func hasBadge(badges []Badge, id BadgeID) bool {
	for _, b := range badges {
		if b.ID == id {
			return true
		}
	}
	return false
}
