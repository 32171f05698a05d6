package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/games", handler.ListGames)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}/players", handler.ListTeamRoster)
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/games/{gameID}/session", handler.OpenSession)
	mux.HandleFunc("GET /v1/games/{gameID}/session", handler.GetSession)
	mux.HandleFunc("POST /v1/games/{gameID}/session/start", handler.StartScoring)
	mux.HandleFunc("POST /v1/games/{gameID}/session/selection", handler.BackToSelection)
	mux.HandleFunc("POST /v1/games/{gameID}/session/finish", handler.FinishGame)
	mux.HandleFunc("POST /v1/games/{gameID}/session/resume", handler.BackToScoring)
	mux.HandleFunc("PUT /v1/games/{gameID}/session/active-player", handler.SetActivePlayer)
	mux.HandleFunc("POST /v1/games/{gameID}/session/check-ins", handler.CheckInPlayer)
	mux.HandleFunc("POST /v1/games/{gameID}/session/timeouts", handler.TakeTimeout)
	mux.HandleFunc("PUT /v1/games/{gameID}/session/player-of-game", handler.SetPlayerOfGame)
}

func registerScoringRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/games/{gameID}/session/points", handler.RecordPoint)
	mux.HandleFunc("POST /v1/games/{gameID}/session/points/undo", handler.UndoLastPoint)
	mux.HandleFunc("POST /v1/games/{gameID}/session/counters/increment", handler.IncrementCounter)
	mux.HandleFunc("POST /v1/games/{gameID}/session/counters/decrement", handler.DecrementCounter)
	mux.HandleFunc("GET /v1/games/{gameID}/session/players/{playerID}/stats", handler.GetPlayerStats)
	mux.HandleFunc("GET /v1/games/{gameID}/session/totals", handler.GetTeamTotals)
}

func registerLiveRoutes(mux *http.ServeMux, liveFeed *LiveFeed) {
	mux.HandleFunc("GET /v1/games/{gameID}/live", liveFeed.ServeWS)
}
