package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

// parseSummary extracts the REVIEW section of a game center page
func parseSummary(r io.Reader) (*game.Summary, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	if doc.Find("#tblScordboard2").Length() == 0 {
		return nil, fmt.Errorf("review section: %w: #tblScordboard2", ErrTableNotFound)
	}

	return &game.Summary{
		Stadium:    text(doc, "#txtStadium"),
		Crowd:      text(doc, "#txtCrowd"),
		StartTime:  text(doc, "#txtStartTime"),
		EndTime:    text(doc, "#txtEndTime"),
		RunTime:    text(doc, "#txtRunTime"),
		Scoreboard: tableRows(doc, "#tblScordboard1 tbody tr"),
		Linescore:  tableRows(doc, "#tblScordboard2 tbody tr"),
		RHEB:       tableRows(doc, "#tblScordboard3 tbody tr"),
		KeyPlayers: text(doc, ".keyplayer"),
	}, nil
}

// parseRoster extracts the PREVIEW section of a game center page
func parseRoster(r io.Reader) (*game.Roster, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	if doc.Find("#tblAwayLineUp").Length() == 0 {
		return nil, fmt.Errorf("preview section: %w: #tblAwayLineUp", ErrTableNotFound)
	}

	return &game.Roster{
		Note: text(doc, "#txtLineUp"),
		Away: tableRows(doc, "#tblAwayLineUp tbody tr"),
		Home: tableRows(doc, "#tblHomeLineUp tbody tr"),
	}, nil
}

// text returns the trimmed text of the first element matching selector
func text(doc *goquery.Document, selector string) *string {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return game.StringPtr(sel.First().Text())
}

// tableRows returns the cell texts of each row matching selector. Rows with
// no cells are dropped.
func tableRows(doc *goquery.Document, selector string) [][]string {
	rows := make([][]string, 0)
	doc.Find(selector).Each(func(_ int, tr *goquery.Selection) {
		cells := make([]string, 0)
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}
