package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"impostor/internal/events"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database tests")
	}
	ctx := context.Background()
	database, err := Connect(ctx, dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	t.Cleanup(func() {
		database.conn.Exec("DELETE FROM game_points")
		database.conn.Exec("DELETE FROM games")
		database.Close()
	})
	return database
}

func TestConnect(t *testing.T) {
	database := getTestDB(t)
	if err := database.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	database := getTestDB(t)

	for _, table := range []string{"games", "game_points"} {
		var exists bool
		err := database.conn.QueryRow(`
			SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)
		`, table).Scan(&exists)
		if err != nil {
			t.Errorf("checking table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	database := getTestDB(t)
	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate() error: %v", err)
	}
}

func TestRecordGame(t *testing.T) {
	database := getTestDB(t)
	ctx := context.Background()

	id, err := database.RecordGame(ctx, events.GameRecord{
		RoomCode:     "ABCDE",
		Category:     "animales",
		Word:         "perro",
		ImpostorID:   "c",
		ImpostorName: "Carla",
		ImpostorWon:  false,
		Reason:       "impostor_caught",
		Rounds:       1,
		Points:       map[string]int{"Ana": 1, "Beto": 1, "Carla": 0},
		EndedAt:      time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordGame() error: %v", err)
	}
	if id == 0 {
		t.Fatal("RecordGame() returned zero id")
	}

	var word, reason string
	var won bool
	err = database.conn.QueryRow(`SELECT word, reason, impostor_won FROM games WHERE id = $1`, id).
		Scan(&word, &reason, &won)
	if err != nil {
		t.Fatalf("reading game: %v", err)
	}
	if word != "perro" || reason != "impostor_caught" || won {
		t.Errorf("stored game = (%q, %q, %v), want (perro, impostor_caught, false)", word, reason, won)
	}

	var count, total int
	err = database.conn.QueryRow(`SELECT COUNT(*), COALESCE(SUM(points), 0) FROM game_points WHERE game_id = $1`, id).
		Scan(&count, &total)
	if err != nil {
		t.Fatalf("reading points: %v", err)
	}
	if count != 3 {
		t.Errorf("point rows = %d, want 3", count)
	}
	if total != 2 {
		t.Errorf("total points = %d, want 2", total)
	}
}

func TestRecordGame_NoPoints(t *testing.T) {
	database := getTestDB(t)

	id, err := database.RecordGame(context.Background(), events.GameRecord{
		RoomCode:     "FGHJK",
		Category:     "Fútbol",
		Subtopic:     "⭐ Leyendas",
		Word:         "Pelé",
		ImpostorName: "Ana",
		ImpostorWon:  true,
		Reason:       "host",
		Forced:       true,
		EndedAt:      time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordGame() error: %v", err)
	}
	if id == 0 {
		t.Error("RecordGame() returned zero id")
	}
}
