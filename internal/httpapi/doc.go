// Package httpapi exposes the schedule and realtime reports over HTTP.
//
// Routes:
//
//	GET /health
//	GET /metrics
//	GET /api/v1/schedule?date=YYYY-MM-DD
//	GET /api/v1/stadium?date=YYYY-MM-DD&game_id=
//	GET /api/v1/games/realtime?date=YYYY-MM-DD[&team=][&game_id=]
//	GET /api/v1/games/analysis?date=YYYY-MM-DD[&team=][&game_id=]
//
// Every request carries an X-Request-ID (generated when absent) that is
// echoed in access logs and in the error envelope:
//
//	{ "request_id": "...", "code": "invalid_date", "message": "..." }
package httpapi
