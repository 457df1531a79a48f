// Package cli implements the kbo-gamecenter command-line interface.
//
// The cobra command tree wires the schedule cache, the realtime game center
// fetcher and the report builder together: `schedule` lists a day's games
// (text, JSON or iCalendar), `game` and `analyze` print the realtime report
// for one game, `sync` collects a month ahead of time and `serve` exposes
// the same operations over HTTP.
package cli
