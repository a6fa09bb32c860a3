package analytics

import (
	"context"
	"fmt"

	"impostor/internal/db"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

func (q *Queries) Summary(ctx context.Context) (*Summary, error) {
	s := &Summary{}
	err := q.DB.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE impostor_won),
			COUNT(*) FILTER (WHERE NOT impostor_won),
			COUNT(*) FILTER (WHERE forced)
		FROM games
	`).Scan(&s.Games, &s.ImpostorWins, &s.GroupWins, &s.Forced)
	if err != nil {
		return nil, fmt.Errorf("getting summary: %w", err)
	}
	s.ImpostorWinRate = WinRate(s.ImpostorWins, s.Games)

	rows, err := q.DB.Query(ctx, `
		SELECT category, COUNT(*), COUNT(*) FILTER (WHERE impostor_won)
		FROM games
		GROUP BY category
		ORDER BY COUNT(*) DESC, category
	`)
	if err != nil {
		return nil, fmt.Errorf("getting category stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c CategoryStat
		if err := rows.Scan(&c.Category, &c.Games, &c.ImpostorWins); err != nil {
			return nil, err
		}
		s.Categories = append(s.Categories, c)
	}
	return s, rows.Err()
}

func (q *Queries) Recent(ctx context.Context, limit int) ([]RecentGame, error) {
	rows, err := q.DB.Query(ctx, `
		SELECT id, room_code, category, subtopic, word, impostor_name, impostor_won, reason, rounds, ended_at
		FROM games
		ORDER BY ended_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("getting recent games: %w", err)
	}
	defer rows.Close()

	var games []RecentGame
	for rows.Next() {
		var g RecentGame
		if err := rows.Scan(&g.ID, &g.RoomCode, &g.Category, &g.Subtopic, &g.Word,
			&g.ImpostorName, &g.ImpostorWon, &g.Reason, &g.Rounds, &g.EndedAt); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// Leaderboard aggregates points by player name. Players are identified by
// name only because connection ids do not survive a reconnect.
func (q *Queries) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := q.DB.Query(ctx, `
		SELECT
			gp.player_name,
			COALESCE(SUM(gp.points), 0),
			COUNT(*),
			COUNT(*) FILTER (WHERE g.impostor_name = gp.player_name),
			COUNT(*) FILTER (WHERE g.impostor_name = gp.player_name AND g.impostor_won),
			COUNT(*) FILTER (WHERE g.impostor_name <> gp.player_name AND NOT g.impostor_won)
		FROM game_points gp
		JOIN games g ON g.id = gp.game_id
		GROUP BY gp.player_name
		ORDER BY SUM(gp.points) DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.Points, &e.GamesPlayed,
			&e.ImpostorRuns, &e.ImpostorWins, &e.GroupWins); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return Rank(entries), nil
}
