package router

import (
	"net/http"

	auth "scoremint/internal/auth/controller"
	leaderboard "scoremint/internal/leaderboard/controller"
	mint "scoremint/internal/mint/controller"
	runs "scoremint/internal/runs/controller"
	"scoremint/internal/service/middleware"
	users "scoremint/internal/users/controller"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth        *auth.AuthHandler
	Users       *users.UserHandler
	Runs        *runs.RunHandler
	Mint        *mint.MintHandler
	Leaderboard *leaderboard.LeaderboardHandler
}

func SetUpRoutes(h Handlers, jwtToken middleware.JwtTokenService) *mux.Router {
	router := mux.NewRouter()
	api := "/api"
	session := middleware.RequireSession(jwtToken)
	protected := func(handler http.HandlerFunc) http.Handler {
		return session(handler)
	}

	router.HandleFunc(api+"/auth/nonce", h.Auth.GetNonce).Methods("GET")            // Issue sign-in challenge
	router.HandleFunc(api+"/auth/login", h.Auth.Login).Methods("POST")              // Signed-message login
	router.HandleFunc(api+"/auth/login-silent", h.Auth.LoginSilent).Methods("POST") // Trusted-context login

	router.Handle(api+"/users/profile", protected(h.Users.GetProfile)).Methods("GET")
	router.Handle(api+"/users/upgradecrit", protected(h.Users.UpgradeCrit)).Methods("POST")
	router.Handle(api+"/users/upgradevalue", protected(h.Users.UpgradeValue)).Methods("POST")
	router.Handle(api+"/users/wallet", protected(h.Users.LinkWallet)).Methods("POST")

	router.Handle(api+"/runs/finish", protected(h.Runs.FinishRun)).Methods("POST")
	router.HandleFunc(api+"/runs/all", h.Leaderboard.TopRuns).Methods("GET")

	router.Handle(api+"/nft/mint", protected(h.Mint.Mint)).Methods("POST")
	router.HandleFunc(api+"/nft/check/{score}", h.Mint.CheckScore).Methods("GET")
	router.Handle(api+"/nft/my-nfts", protected(h.Leaderboard.MyMintedScores)).Methods("GET")
	router.HandleFunc(api+"/nft/leaderboard", h.Leaderboard.MintedLeaderboard).Methods("GET")

	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.RateLimitMiddleware)
	return router
}
