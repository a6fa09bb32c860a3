package db

import (
	"context"
	"fmt"
	"sort"

	"impostor/internal/events"
)

// RecordGame stores a finished game and its point awards in one transaction.
func (d *DB) RecordGame(ctx context.Context, rec events.GameRecord) (int64, error) {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO games (room_code, category, subtopic, word, impostor_name, impostor_won, reason, rounds, forced, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`, rec.RoomCode, rec.Category, rec.Subtopic, rec.Word, rec.ImpostorName,
		rec.ImpostorWon, rec.Reason, rec.Rounds, rec.Forced, rec.EndedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting game: %w", err)
	}

	names := make([]string, 0, len(rec.Points))
	for name := range rec.Points {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO game_points (game_id, player_name, points)
			VALUES ($1, $2, $3)
			ON CONFLICT (game_id, player_name) DO UPDATE SET points = $3
		`, id, name, rec.Points[name])
		if err != nil {
			return 0, fmt.Errorf("inserting points for %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing game: %w", err)
	}
	return id, nil
}
