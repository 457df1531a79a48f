package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

// DefaultPath is where the schedule database lives unless configured otherwise
const DefaultPath = "~/.local/share/kbo-gamecenter/kbo.sqlite"

// identityIndex enforces one row per logical game. Expression columns treat a
// missing time or game ID as "" so those rows deduplicate too.
const identityIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_schedules_identity
ON schedules(game_date, COALESCE(start_time, ''), away, home, COALESCE(game_id, ''))`

// Store handles persistence of schedule rows and bucket freshness stamps
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path and migrates it.
// A leading "~/" is expanded to the home directory and the parent directory
// is created if needed.
func Open(path string) (*Store, error) {
	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// spans join the caller's trace when tracing is enabled
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("registering tracing plugin: %w", err)
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	return New(db)
}

// New wraps an existing GORM handle and migrates the schema
func New(db *gorm.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(&gameRow{}, &bucketRow{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	if err := s.db.Exec(identityIndex).Error; err != nil {
		return fmt.Errorf("creating identity index: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertGames inserts games, silently skipping rows that already exist.
// Returns the number of rows actually written.
func (s *Store) InsertGames(ctx context.Context, games []game.Game) (int64, error) {
	return insertGames(s.db.WithContext(ctx), games)
}

func insertGames(tx *gorm.DB, games []game.Game) (int64, error) {
	var inserted int64
	for _, g := range games {
		row := toRow(g)
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return inserted, fmt.Errorf("inserting game %s %s@%s: %w", g.Date, g.Away, g.Home, res.Error)
		}
		inserted += res.RowsAffected
	}
	return inserted, nil
}

// UpsertBucket records at as the last collection instant of b
func (s *Store) UpsertBucket(ctx context.Context, b game.Bucket, at time.Time) error {
	return upsertBucket(s.db.WithContext(ctx), b, at)
}

func upsertBucket(tx *gorm.DB, b game.Bucket, at time.Time) error {
	row := bucketRow{Year: b.Year, Month: b.Month, Series: b.Series, FetchedAt: formatTime(at)}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}, {Name: "month"}, {Name: "series"}},
		DoUpdates: clause.AssignmentColumns([]string{"fetched_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("stamping bucket %s: %w", b, err)
	}
	return nil
}

// SaveCollection stores the games collected for b and then stamps b as
// collected at the given instant, in one transaction. A failure leaves the
// bucket unstamped.
func (s *Store) SaveCollection(ctx context.Context, b game.Bucket, games []game.Game, at time.Time) (int64, error) {
	var inserted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := insertGames(tx, games)
		if err != nil {
			return err
		}
		inserted = n
		return upsertBucket(tx, b, at)
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// BucketFetchedAt returns when b was last collected. The boolean is false
// when the bucket has never been collected.
func (s *Store) BucketFetchedAt(ctx context.Context, b game.Bucket) (time.Time, bool, error) {
	var row bucketRow
	err := s.db.WithContext(ctx).
		Where("year = ? AND month = ? AND series = ?", b.Year, b.Month, b.Series).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading bucket %s: %w", b, err)
	}

	at, err := parseTime(row.FetchedAt)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// GamesByDate returns every game on date ordered by start time (unknown
// times first), then away team, then home team.
func (s *Store) GamesByDate(ctx context.Context, date string) ([]game.Game, error) {
	var rows []gameRow
	err := s.db.WithContext(ctx).
		Where("game_date = ?", date).
		Order("start_time ASC").
		Order("away ASC").
		Order("home ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing games for %s: %w", date, err)
	}

	games := make([]game.Game, 0, len(rows))
	for _, r := range rows {
		g, err := r.toGame()
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}

// StadiumByGameID returns the stadium of the first game on date whose
// resolved ID (stored game ID, else the gameId of its game-center link) is
// gameID, in GamesByDate order.
func (s *Store) StadiumByGameID(ctx context.Context, date, gameID string) (string, bool, error) {
	games, err := s.GamesByDate(ctx, date)
	if err != nil {
		return "", false, fmt.Errorf("looking up game %s: %w", gameID, err)
	}
	for i := range games {
		if games[i].ResolvedGameID() != gameID {
			continue
		}
		if games[i].Stadium == nil {
			return "", false, nil
		}
		return *games[i].Stadium, true, nil
	}
	return "", false, nil
}

// expandPath expands a leading "~/" to the user's home directory
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
