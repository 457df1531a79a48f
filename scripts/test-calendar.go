package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/kbo-gamecenter/internal/calendar"
	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
)

func main() {
	five, three := 5, 3
	games := []game.Game{
		{
			Date:          "2025-04-01",
			Time:          game.StringPtr("18:30"),
			Away:          "LG",
			Home:          "두산",
			AwayScore:     &five,
			HomeScore:     &three,
			Stadium:       game.StringPtr("잠실"),
			TV:            game.StringPtr("SPOTV"),
			GameID:        game.StringPtr("20250401LGOB0"),
			GameCenterURL: game.StringPtr("https://www.koreabaseball.com/Schedule/GameCenter/Main.aspx?gameDate=20250401&gameId=20250401LGOB0"),
			FetchedAt:     time.Now(),
		},
		{
			Date:      "2025-04-03",
			Away:      "한화",
			Home:      "삼성",
			Stadium:   game.StringPtr("대구"),
			Note:      game.StringPtr("우천취소"),
			FetchedAt: time.Now(),
		},
	}

	icsContent := calendar.GenerateICS(games)

	// owner read/write only
	filename := "test-kbo-games.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
