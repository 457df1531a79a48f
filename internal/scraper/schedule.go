package scraper

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

var (
	// "09.02(화)" style day cells
	dayPattern   = regexp.MustCompile(`(\d{2})\.(\d{2})`)
	digitPattern = regexp.MustCompile(`\d+`)
)

// parseMonth extracts games from the schedule list table. Rows without a
// parsable day or without both teams are skipped.
func parseMonth(r io.Reader, b game.Bucket, baseURL string, fetchedAt time.Time) ([]game.Game, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	games := make([]game.Game, 0)
	currentDay := ""

	doc.Find("#tblScheduleList tbody tr").Each(func(i int, row *goquery.Selection) {
		// the day cell spans every game of that day
		if day := row.Find("td.day"); day.Length() > 0 {
			currentDay = normalize(day.First().Text())
		}

		play := row.Find("td.play").First()
		if play.Length() == 0 {
			return
		}
		teams := play.ChildrenFiltered("span")
		if teams.Length() < 2 {
			return
		}

		m := dayPattern.FindStringSubmatch(currentDay)
		if m == nil {
			return
		}
		day, _ := strconv.Atoi(m[2])

		g := game.Game{
			Date:      game.FormatDate(b.Year, b.Month, day),
			Away:      normalize(teams.First().Text()),
			Home:      normalize(teams.Last().Text()),
			FetchedAt: fetchedAt,
		}
		if g.Away == "" || g.Home == "" {
			return
		}

		if t := row.Find("td.time b"); t.Length() > 0 {
			g.Time = game.StringPtr(normalize(t.First().Text()))
		}

		g.AwayScore, g.HomeScore = parseScores(play)

		cells := make([]string, 0)
		row.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, normalize(td.Text()))
		})
		g.TV = cellFromEnd(cells, 4)
		g.Radio = cellFromEnd(cells, 3)
		g.Stadium = cellFromEnd(cells, 2)
		g.Note = cellFromEnd(cells, 1)

		if href, ok := row.Find("td.relay a").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			if ref, err := url.Parse(strings.TrimSpace(href)); err == nil {
				link := base.ResolveReference(ref).String()
				g.GameCenterURL = &link
				g.GameID = game.StringPtr(game.ExtractGameID(link))
			}
		}

		games = append(games, g)
	})

	return games, nil
}

// parseScores reads the score markup between the two team names. Played
// games mark the spans win/lose; ties and other layouts fall back to the
// first two numbers found.
func parseScores(play *goquery.Selection) (*int, *int) {
	if play.Find("em span.win").Length() > 0 && play.Find("em span.lose").Length() > 0 {
		marked := play.Find("em span.win, em span.lose")
		away, errA := strconv.Atoi(normalize(marked.First().Text()))
		home, errH := strconv.Atoi(normalize(marked.Last().Text()))
		if errA == nil && errH == nil {
			return &away, &home
		}
	}

	nums := make([]int, 0, 2)
	play.Find("em span").Each(func(_ int, span *goquery.Selection) {
		for _, d := range digitPattern.FindAllString(span.Text(), -1) {
			if n, err := strconv.Atoi(d); err == nil {
				nums = append(nums, n)
			}
		}
	})
	if len(nums) >= 2 {
		return &nums[0], &nums[1]
	}
	return nil, nil
}

// cellFromEnd returns the n-th cell counting from the end (1 = last). Rows
// lose their leading day cell under rowspan, so trailing columns are
// addressed from the right.
func cellFromEnd(cells []string, n int) *string {
	if len(cells) < n {
		return nil
	}
	return game.StringPtr(cells[len(cells)-n])
}

// normalize trims s and collapses internal whitespace runs to one space
func normalize(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
