package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/leveltrack/leveltrack/internal/model"
	"github.com/leveltrack/leveltrack/internal/storage"
)

// Storage is a PostgreSQL-backed implementation of the storage
// interface. Inserts run without a prior existence check; the
// unique-violation error from the constraint is the Conflict branch.
type Storage struct {
	db *sql.DB
}

// Open connects to PostgreSQL and applies the schema
func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// NewWithDB creates a Storage with an existing connection (for testing)
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// isUniqueViolation reports whether err is a duplicate-key rejection
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (bool, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, created_at) VALUES ($1, $2)`,
		string(player.ID), player.CreatedAt,
	)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create player: %w", err)
	}
	return true, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM players WHERE id = $1`,
		string(id),
	).Scan(&player.ID, &player.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return &player, nil
}

// Content operations

func (s *Storage) CreatePrize(ctx context.Context, prize *model.Prize) (bool, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prizes (id, title) VALUES ($1, $2)`,
		string(prize.ID), prize.Title,
	)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create prize: %w", err)
	}
	return true, nil
}

func (s *Storage) GetPrize(ctx context.Context, id model.PrizeID) (*model.Prize, error) {
	var prize model.Prize
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title FROM prizes WHERE id = $1`,
		string(id),
	).Scan(&prize.ID, &prize.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPrizeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prize: %w", err)
	}
	return &prize, nil
}

func (s *Storage) CreateLevel(ctx context.Context, level *model.Level) (bool, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO levels (id, title, level_order, prize_id) VALUES ($1, $2, $3, $4)`,
		string(level.ID), level.Title, level.Order, string(level.PrizeID),
	)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create level: %w", err)
	}
	return true, nil
}

func (s *Storage) GetLevel(ctx context.Context, id model.LevelID) (*model.Level, error) {
	var level model.Level
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, level_order, prize_id FROM levels WHERE id = $1`,
		string(id),
	).Scan(&level.ID, &level.Title, &level.Order, &level.PrizeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrLevelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get level: %w", err)
	}
	return &level, nil
}

func (s *Storage) ListLevels(ctx context.Context) ([]*model.Level, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, level_order, prize_id FROM levels ORDER BY level_order, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	defer rows.Close()

	var levels []*model.Level
	for rows.Next() {
		var level model.Level
		if err := rows.Scan(&level.ID, &level.Title, &level.Order, &level.PrizeID); err != nil {
			return nil, fmt.Errorf("list levels: %w", err)
		}
		levels = append(levels, &level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return levels, nil
}

// Progress operations

func (s *Storage) CreatePlayerLevel(ctx context.Context, pl *model.PlayerLevel) (bool, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO player_levels (player_id, level_id, is_completed, score, started_at, completed)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(pl.PlayerID), string(pl.LevelID), pl.IsCompleted, pl.Score, pl.StartedAt, pl.Completed,
	)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create player level: %w", err)
	}
	return true, nil
}

func (s *Storage) GetPlayerLevel(ctx context.Context, playerID model.PlayerID, levelID model.LevelID) (*model.PlayerLevel, error) {
	var pl model.PlayerLevel
	var completed sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT player_id, level_id, is_completed, score, started_at, completed
		 FROM player_levels WHERE player_id = $1 AND level_id = $2`,
		string(playerID), string(levelID),
	).Scan(&pl.PlayerID, &pl.LevelID, &pl.IsCompleted, &pl.Score, &pl.StartedAt, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player level: %w", err)
	}
	if completed.Valid {
		pl.Completed = &completed.Time
	}
	return &pl, nil
}

func (s *Storage) UpdatePlayerLevel(ctx context.Context, pl *model.PlayerLevel) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE player_levels SET is_completed = $3, score = $4, completed = $5
		 WHERE player_id = $1 AND level_id = $2`,
		string(pl.PlayerID), string(pl.LevelID), pl.IsCompleted, pl.Score, pl.Completed,
	)
	if err != nil {
		return fmt.Errorf("update player level: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update player level: %w", err)
	}
	if affected == 0 {
		return model.ErrProgressNotFound
	}
	return nil
}

// Grant operations

func (s *Storage) CreatePlayerLevelPrize(ctx context.Context, grant *model.PlayerLevelPrize) (bool, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO player_level_prizes (player_id, level_id, prize_id, received)
		 VALUES ($1, $2, $3, $4)`,
		string(grant.PlayerID), string(grant.LevelID), string(grant.PrizeID), grant.Received,
	)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create player level prize: %w", err)
	}
	return true, nil
}

func (s *Storage) GetPlayerLevelPrize(ctx context.Context, playerID model.PlayerID, levelID model.LevelID) (*model.PlayerLevelPrize, error) {
	var grant model.PlayerLevelPrize
	err := s.db.QueryRowContext(ctx,
		`SELECT player_id, level_id, prize_id, received
		 FROM player_level_prizes WHERE player_id = $1 AND level_id = $2`,
		string(playerID), string(levelID),
	).Scan(&grant.PlayerID, &grant.LevelID, &grant.PrizeID, &grant.Received)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGrantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player level prize: %w", err)
	}
	return &grant, nil
}

// Snapshot operations

func (s *Storage) SnapshotPlayerLevels(ctx context.Context) (storage.SnapshotCursor, error) {
	// sql.Rows streams the result set; the ORDER BY keeps repeated
	// exports deterministic
	rows, err := s.db.QueryContext(ctx,
		`SELECT pl.player_id, l.title, pl.is_completed, COALESCE(pr.title, '')
		 FROM player_levels pl
		 JOIN levels l ON l.id = pl.level_id
		 LEFT JOIN player_level_prizes plp
		   ON plp.player_id = pl.player_id AND plp.level_id = pl.level_id
		 LEFT JOIN prizes pr ON pr.id = plp.prize_id
		 ORDER BY pl.player_id, pl.level_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot player levels: %w", err)
	}
	return &snapshotCursor{rows: rows}, nil
}

type snapshotCursor struct {
	rows *sql.Rows
}

func (c *snapshotCursor) Next() (storage.SnapshotRow, bool, error) {
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return storage.SnapshotRow{}, false, fmt.Errorf("snapshot player levels: %w", err)
		}
		return storage.SnapshotRow{}, false, nil
	}

	var row storage.SnapshotRow
	if err := c.rows.Scan(&row.PlayerID, &row.LevelTitle, &row.IsCompleted, &row.PrizeTitle); err != nil {
		return storage.SnapshotRow{}, false, fmt.Errorf("snapshot player levels: %w", err)
	}
	return row, true, nil
}

func (c *snapshotCursor) Close() error {
	return c.rows.Close()
}
