// Package scraper provides HTTP fetching and HTML parsing for the KBO website.
//
// The scraper package reads two kinds of pages from koreabaseball.com. The
// monthly schedule list (Schedule.aspx) yields one game.Game per table row,
// carrying the date cell across rowspans and resolving the game-center link
// into an absolute URL and game ID. The game-center REVIEW and PREVIEW
// sections yield the scoreboards, venue facts and starting lineups of a single
// game. Parsing is done with goquery and is kept separate from fetching so it
// can be exercised against saved pages.
package scraper
