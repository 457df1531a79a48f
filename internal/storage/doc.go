// Package storage provides SQLite persistence for the schedule cache.
//
// The storage package keeps two tables: schedules, one append-only row per
// game with a uniqueness index over (date, time, away, home, game ID), and
// month_cache, one row per (year, month, series) bucket recording when that
// bucket was last collected from the source. It uses GORM over a pure-Go
// SQLite driver, so no cgo toolchain is needed. The default database location
// is ~/.local/share/kbo-gamecenter/kbo.sqlite.
package storage
