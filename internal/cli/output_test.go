package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/kbo-gamecenter/internal/analysis"
	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
	"github.com/pfrederiksen/kbo-gamecenter/internal/report"
)

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON", FormatText, FormatJSON); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %q, %v", f, err)
	}
	_, err := ParseFormat("ics", FormatText, FormatJSON)
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "'text' or 'json'") {
		t.Errorf("error = %v", err)
	}
}

func TestWriteSchedule(t *testing.T) {
	five, three := 5, 3
	games := []game.Game{
		{Date: "2025-04-01", Time: game.StringPtr("18:30"), Away: "LG", Home: "두산", AwayScore: &five, HomeScore: &three, Stadium: game.StringPtr("잠실")},
		{Date: "2025-04-01", Away: "한화", Home: "삼성", Note: game.StringPtr("우천취소")},
	}

	tests := []struct {
		name   string
		format OutputFormat
		want   []string
	}{
		{
			name:   "text output",
			format: FormatText,
			want:   []string{"2025-04-01 (2 games)", "18:30  LG 5-3 두산 @ 잠실", "--:--  한화 vs 삼성 [우천취소]"},
		},
		{
			name:   "json output",
			format: FormatJSON,
			want:   []string{`"count": 2`, `"score": "5-3"`, `"away": "한화"`},
		},
		{
			name:   "ics output",
			format: FormatICS,
			want:   []string{"BEGIN:VCALENDAR", "SUMMARY:", "STATUS:CANCELLED"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteSchedule(&buf, "2025-04-01", games, tt.format); err != nil {
				t.Fatalf("WriteSchedule failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}

	var buf bytes.Buffer
	if err := WriteSchedule(&buf, "2025-04-01", games, "yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteScheduleJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSchedule(&buf, "2025-04-07", nil, FormatJSON); err != nil {
		t.Fatal(err)
	}
	var out ScheduleOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Games == nil || len(out.Games) != 0 {
		t.Errorf("games = %v, want empty list", out.Games)
	}
}

func TestWriteReportText(t *testing.T) {
	diff := 2
	r := &report.Report{
		Query:     report.NewQuery("2025-04-01", "LG", ""),
		FetchedAt: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
		Stale:     true,
		Errors:    []string{"roster: timeout"},
		Facts: &report.Facts{
			ScheduleGame: game.Entry{
				Date: "2025-04-01", Time: game.StringPtr("18:30"), Away: "LG", Home: "두산",
				Score: game.StringPtr("5-3"), Stadium: game.StringPtr("잠실"),
			},
			Summary:    &game.Summary{Crowd: game.StringPtr("23,750")},
			KeyPlayers: &report.KeyPlayers{Text: "결승타: 오스틴"},
		},
		DerivedMetrics: analysis.Metrics{RunDiff: &diff},
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, r, FormatText); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"LG vs 두산 (2025-04-01 18:30, 잠실)",
		"Score: 5-3",
		"Crowd: 23,750",
		"Key players: 결승타: 오스틴",
		"Run differential: 2",
		"Fetched: 2025-04-01 21:00:00 KST (stale)",
		"  - roster: timeout",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestWriteReportNoMatch(t *testing.T) {
	r := &report.Report{Query: report.NewQuery("2025-04-01", "롯데", ""), Errors: []string{report.ErrNoMatchingGame}}

	var buf bytes.Buffer
	if err := WriteReport(&buf, r, FormatText); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "No matching game on 2025-04-01.\n" {
		t.Errorf("output = %q", got)
	}

	buf.Reset()
	if err := WriteReport(&buf, r, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"facts": null`) {
		t.Errorf("json output = %s", buf.String())
	}
}
