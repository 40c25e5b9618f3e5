// Package api exposes the auction over a JSON HTTP API and the
// websocket entry point.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/nbbluestudios/crickbid/internal/auction"
	"github.com/nbbluestudios/crickbid/internal/database"
	"github.com/nbbluestudios/crickbid/internal/gateway"
	"github.com/nbbluestudios/crickbid/internal/managers"
	"github.com/nbbluestudios/crickbid/internal/round2"
)

// Server holds the handler dependencies.
type Server struct {
	db       *database.DB
	managers *managers.Repository
	auctions *auction.Service
	round2   *round2.Service
	gateway  *gateway.ConnectionManager

	upgrader  websocket.Upgrader
	jwtSecret string
}

// Config wires the server.
type Config struct {
	DB             *database.DB
	Managers       *managers.Repository
	Auctions       *auction.Service
	Round2         *round2.Service
	Gateway        *gateway.ConnectionManager
	JWTSecret      string
	AllowedOrigins []string
}

func NewServer(cfg Config) *Server {
	return &Server{
		db:       cfg.DB,
		managers: cfg.Managers,
		auctions: cfg.Auctions,
		round2:   cfg.Round2,
		gateway:  cfg.Gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     allowOrigin(cfg.AllowedOrigins),
		},
		jwtSecret: cfg.JWTSecret,
	}
}

func allowOrigin(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	all := false
	for _, o := range origins {
		if o == "*" {
			all = true
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		return all || allowed[r.Header.Get("Origin")]
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/api/login", s.handleLogin)
	r.Get("/ws/auction", s.handleWebsocket)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/api/lobby", s.handleLobby)
		r.Post("/api/lobby/ready", s.handleLobbyReady)

		r.Get("/api/auction", s.handleAuctionState)
		r.Get("/api/auction/live", s.handleLiveAuction)
		r.Post("/api/auction/bid", s.handlePlaceBid)
		r.Get("/api/auction/freeze", s.handleFreeze)
		r.Get("/api/auction/roster", s.handleRoster)

		r.Get("/api/round2/players", s.handleRound2Players)
		r.Get("/api/round2/selections", s.handleRound2Selections)
		r.Post("/api/round2/selections", s.handleRound2Select)
		r.Delete("/api/round2/selections/{playerID}", s.handleRound2Deselect)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Get("/api/admin/auctions", s.handleListAuctions)
			r.Post("/api/admin/auctions", s.handleCreateAuction)
			r.Delete("/api/admin/auctions/{auctionID}", s.handleDeleteAuction)
			r.Post("/api/admin/auctions/{auctionID}/pause", s.handlePause)
			r.Post("/api/admin/auctions/{auctionID}/resume", s.handleResume)
			r.Post("/api/admin/auctions/{auctionID}/skip", s.handleSkip)
			r.Post("/api/admin/auctions/{auctionID}/filters", s.handleFilters)
			r.Post("/api/admin/auctions/{auctionID}/round2/open", s.handleRound2Open)
			r.Post("/api/admin/auctions/{auctionID}/round2/close", s.handleRound2Close)
			r.Post("/api/admin/auctions/{auctionID}/round2/start", s.handleRound2Start)
			r.Get("/api/admin/auctions/{auctionID}/selections", s.handleAllSelections)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
