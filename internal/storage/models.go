package storage

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

// gameRow is the persisted form of a game.Game
type gameRow struct {
	ID            uint    `gorm:"primaryKey;autoIncrement"`
	GameDate      string  `gorm:"type:TEXT NOT NULL;index:idx_schedules_date"`
	StartTime     *string `gorm:"type:TEXT"`
	Away          string  `gorm:"type:TEXT NOT NULL"`
	Home          string  `gorm:"type:TEXT NOT NULL"`
	AwayScore     *int    `gorm:"type:INTEGER"`
	HomeScore     *int    `gorm:"type:INTEGER"`
	Stadium       *string `gorm:"type:TEXT"`
	TV            *string `gorm:"column:tv;type:TEXT"`
	Radio         *string `gorm:"type:TEXT"`
	Note          *string `gorm:"type:TEXT"`
	GameID        *string `gorm:"type:TEXT"`
	GameCenterURL *string `gorm:"column:gamecenter_url;type:TEXT"`
	FetchedAt     string  `gorm:"type:TEXT NOT NULL"`
}

// TableName implements the GORM tabler interface.
func (gameRow) TableName() string { return "schedules" }

// bucketRow records the last successful collection of a bucket
type bucketRow struct {
	Year      int    `gorm:"primaryKey;autoIncrement:false"`
	Month     int    `gorm:"primaryKey;autoIncrement:false"`
	Series    string `gorm:"primaryKey;type:TEXT"`
	FetchedAt string `gorm:"type:TEXT NOT NULL"`
}

// TableName implements the GORM tabler interface.
func (bucketRow) TableName() string { return "month_cache" }

func toRow(g game.Game) gameRow {
	return gameRow{
		GameDate:      g.Date,
		StartTime:     g.Time,
		Away:          g.Away,
		Home:          g.Home,
		AwayScore:     g.AwayScore,
		HomeScore:     g.HomeScore,
		Stadium:       g.Stadium,
		TV:            g.TV,
		Radio:         g.Radio,
		Note:          g.Note,
		GameID:        g.GameID,
		GameCenterURL: g.GameCenterURL,
		FetchedAt:     formatTime(g.FetchedAt),
	}
}

func (r gameRow) toGame() (game.Game, error) {
	fetchedAt, err := parseTime(r.FetchedAt)
	if err != nil {
		return game.Game{}, fmt.Errorf("schedule row %d: %w", r.ID, err)
	}
	return game.Game{
		Date:          r.GameDate,
		Time:          r.StartTime,
		Away:          r.Away,
		Home:          r.Home,
		AwayScore:     r.AwayScore,
		HomeScore:     r.HomeScore,
		Stadium:       r.Stadium,
		TV:            r.TV,
		Radio:         r.Radio,
		Note:          r.Note,
		GameID:        r.GameID,
		GameCenterURL: r.GameCenterURL,
		FetchedAt:     fetchedAt,
	}, nil
}

// formatTime renders t as an ISO-8601 UTC string
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
