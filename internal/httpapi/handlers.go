package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
	"github.com/pfrederiksen/kbo-gamecenter/internal/report"
)

type handlers struct {
	schedules ScheduleService
	reports   ReportService
}

// ScheduleResponse is the body of GET /api/v1/schedule
type ScheduleResponse struct {
	Date  string       `json:"date"`
	Count int          `json:"count"`
	Games []game.Entry `json:"games"`
}

func (h *handlers) schedule(c *gin.Context) {
	date, ok := requireDate(c)
	if !ok {
		return
	}

	entries, err := h.schedules.Schedule(c.Request.Context(), date)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ScheduleResponse{Date: date, Count: len(entries), Games: entries})
}

// StadiumResponse is the body of GET /api/v1/stadium
type StadiumResponse struct {
	Date    string `json:"date"`
	GameID  string `json:"game_id"`
	Stadium string `json:"stadium"`
}

func (h *handlers) stadium(c *gin.Context) {
	date, ok := requireDate(c)
	if !ok {
		return
	}
	gameID := c.Query("game_id")
	if gameID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "game_id query parameter is required")
		return
	}

	stadium, found, err := h.schedules.StadiumFor(c.Request.Context(), date, gameID)
	if err != nil {
		failErr(c, err)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no stadium known for game "+gameID)
		return
	}
	c.JSON(http.StatusOK, StadiumResponse{Date: date, GameID: gameID, Stadium: stadium})
}

func (h *handlers) realtime(c *gin.Context) {
	h.report(c, h.reports.Build)
}

func (h *handlers) analysis(c *gin.Context) {
	h.report(c, h.reports.Analyze)
}

func (h *handlers) report(c *gin.Context, build func(context.Context, report.Query) (*report.Report, error)) {
	date, ok := requireDate(c)
	if !ok {
		return
	}

	q := report.NewQuery(date, c.Query("team"), c.Query("game_id"))
	r, err := build(c.Request.Context(), q)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func requireDate(c *gin.Context) (string, bool) {
	date := c.Query("date")
	if date == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date query parameter is required (YYYY-MM-DD)")
		return "", false
	}
	return date, true
}
