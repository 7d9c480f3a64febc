package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	Router *chi.Mux
}

// NewServer mounts the auction API. stream serves the websocket event feed and may be nil.
func NewServer(handler *Handler, stream http.Handler) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(cors)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auctions", func(r chi.Router) {
		r.Post("/", handler.CreateAuction)
		r.Get("/", handler.ListAuctions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.GetAuction)
			r.Post("/bids", handler.PlaceBid)
			r.Post("/buy", handler.BuyNow)
			r.Post("/withdraw", handler.Withdraw)
			r.Post("/settle", handler.Settle)
			r.Post("/cancel", handler.Cancel)
			r.Get("/refunds/{participant}", handler.PendingRefund)
			r.Get("/time-to-reserve", handler.TimeToReserve)
			r.Get("/events", handler.Events)
		})
	})

	if handler.Custody != nil {
		r.Route("/vault", func(r chi.Router) {
			r.Post("/deposits", handler.Deposit)
			r.Get("/balances/{account}", handler.Balance)
			r.Post("/assets", handler.Mint)
			r.Get("/assets/{contract}/{itemId}/{holder}", handler.Holding)
			r.Post("/approvals", handler.SetApproval)
			r.Get("/approvals/{contract}/{owner}", handler.Approval)
		})
	}

	if stream != nil {
		r.Handle("/events/ws", stream)
	}

	return &Server{Router: r}
}
