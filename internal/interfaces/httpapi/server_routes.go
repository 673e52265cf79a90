package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/users", handler.RegisterUser)
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/tournaments/public", handler.ListPublicTournaments)
	mux.HandleFunc("GET /v1/tournaments/search", handler.SearchPublicTournaments)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/scores", RequireAuth(verifier, http.HandlerFunc(handler.SubmitScore)))
	mux.Handle("GET /v1/scores", RequireAuth(verifier, http.HandlerFunc(handler.ListMyScores)))
	mux.Handle("GET /v1/players/{userID}/scores", RequireAuth(verifier, http.HandlerFunc(handler.ListPlayerScores)))

	mux.Handle("POST /v1/tournaments", RequireAuth(verifier, http.HandlerFunc(handler.CreateTournament)))
	mux.Handle("GET /v1/tournaments", RequireAuth(verifier, http.HandlerFunc(handler.ListMyTournaments)))
	mux.Handle("GET /v1/tournaments/{tournamentID}", RequireAuth(verifier, http.HandlerFunc(handler.GetTournament)))
	mux.Handle("POST /v1/tournaments/{tournamentID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinTournament)))
	mux.Handle("DELETE /v1/tournaments/{tournamentID}/leave", RequireAuth(verifier, http.HandlerFunc(handler.LeaveTournament)))
	mux.Handle("DELETE /v1/tournaments/{tournamentID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteTournament)))
	mux.Handle("POST /v1/tournaments/{tournamentID}/end", RequireAuth(verifier, http.HandlerFunc(handler.EndTournament)))
	mux.Handle("GET /v1/tournaments/{tournamentID}/results", RequireAuth(verifier, http.HandlerFunc(handler.GetTournamentResults)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/daily-penalties", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunDailyPenaltiesJob)))
	mux.Handle("POST /v1/internal/jobs/expire-tournaments", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunExpireTournamentsJob)))
}
