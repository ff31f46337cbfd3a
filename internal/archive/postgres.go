package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// pgStore archives games in Postgres. Expected schema:
//
//	CREATE TABLE archived_games (
//	    id         BIGSERIAL PRIMARY KEY,
//	    room_id    TEXT        NOT NULL,
//	    phase      TEXT        NOT NULL,
//	    winner     TEXT        NOT NULL DEFAULT '',
//	    moves      INT         NOT NULL,
//	    pieces     JSONB       NOT NULL,
//	    started_at TIMESTAMPTZ NOT NULL,
//	    closed_at  TIMESTAMPTZ NOT NULL,
//	    UNIQUE (room_id, closed_at)
//	);
type pgStore struct {
	db *sql.DB
}

// NewPostgresStore opens databaseURL and verifies the connection.
func NewPostgresStore(databaseURL string) (Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &pgStore{db: db}, nil
}

func (s *pgStore) SaveGame(ctx context.Context, g *Game) error {
	if g == nil {
		return nil
	}
	pieces, err := json.Marshal(g.Pieces)
	if err != nil {
		return fmt.Errorf("marshal pieces: %w", err)
	}
	const query = `
		INSERT INTO archived_games (room_id, phase, winner, moves, pieces, started_at, closed_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)
		ON CONFLICT (room_id, closed_at) DO NOTHING
		RETURNING id`
	var id sql.NullInt64
	err = s.db.QueryRowContext(ctx, query,
		g.RoomID, g.Phase, g.Winner, g.Moves, pieces, g.StartedAt, g.ClosedAt,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return ErrDuplicateGame
	}
	if err != nil {
		return fmt.Errorf("insert archived game: %w", err)
	}
	return nil
}

func (s *pgStore) GetGame(ctx context.Context, roomID string) (*Game, error) {
	const query = `
		SELECT room_id, phase, winner, moves, pieces, started_at, closed_at
		FROM archived_games
		WHERE room_id = $1
		ORDER BY closed_at DESC
		LIMIT 1`
	g, err := scanGame(s.db.QueryRowContext(ctx, query, roomID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select archived game: %w", err)
	}
	return g, nil
}

func (s *pgStore) RecentGames(ctx context.Context, limit int) ([]*Game, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT room_id, phase, winner, moves, pieces, started_at, closed_at
		FROM archived_games
		ORDER BY closed_at DESC
		LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select archived games: %w", err)
	}
	defer rows.Close()

	games := make([]*Game, 0, limit)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan archived game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*Game, error) {
	var (
		g          Game
		piecesJSON []byte
	)
	if err := row.Scan(&g.RoomID, &g.Phase, &g.Winner, &g.Moves, &piecesJSON, &g.StartedAt, &g.ClosedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(piecesJSON, &g.Pieces); err != nil {
		return nil, fmt.Errorf("unmarshal pieces: %w", err)
	}
	return &g, nil
}
