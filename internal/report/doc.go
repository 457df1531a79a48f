// Package report assembles the realtime document for one game.
//
// A Builder resolves a (date, team, game ID) query to a single scheduled
// game, fetches its summary and roster through the realtime layer and
// combines them with structural warnings and derived metrics. The document
// is always well formed: a missing game, a missing game-center link or a
// failed fetch shows up in its stale flag and errors list, never as a Go
// error. Build only fails when the day's schedule itself cannot be read.
package report
