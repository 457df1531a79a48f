// Package game provides the domain types for KBO schedule entries and
// game-center detail pages.
//
// A Game is one row of the monthly schedule table. Games are identified for
// deduplication by their date, start time, participants and external game ID,
// and are grouped for collection into Buckets of (year, month, series).
// Detail pages come in two kinds, a summary (scoreboard, venue) and a roster
// (starting lineups), each with its own payload type.
package game
