// Package rest exposes the admission and market-data HTTP API.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"matchbook/domain/orderbook"
	"matchbook/infra/metrics"
	"matchbook/service"
)

type Server struct {
	svc    *service.OrderService
	log    zerolog.Logger
	router *mux.Router
}

func NewServer(svc *service.OrderService, log zerolog.Logger) *Server {
	s := &Server{svc: svc, log: log, router: mux.NewRouter()}
	s.routes()
	return s
}

// Router returns the configured handler for an http.Server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) routes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/orders", s.handlePlaceOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id:[0-9]+}", s.handleGetOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id:[0-9]+}", s.handleCancelOrder).Methods(http.MethodDelete)
	api.HandleFunc("/book", s.handleBook).Methods(http.MethodGet)
	api.HandleFunc("/book/depth", s.handleDepth).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorDTO{Error: "malformed request body"})
		return
	}

	side, err := parseSide(req.Side)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorDTO{Error: err.Error()})
		return
	}
	otype, err := parseOrderType(req.Type)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorDTO{Error: err.Error()})
		return
	}

	rep, err := s.svc.PlaceOrder(r.Context(), side, otype, req.Price, orderbook.Quantity(req.Quantity))
	if err != nil {
		// Validation reject: surface the reason next to the report.
		writeJSON(w, http.StatusBadRequest, struct {
			errorDTO
			executionReportDTO
		}{errorDTO{Error: err.Error()}, toReportDTO(rep)})
		return
	}

	writeJSON(w, http.StatusCreated, toReportDTO(rep))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorDTO{Error: "bad order id"})
		return
	}
	snap, ok := s.svc.Order(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorDTO{Error: orderbook.ErrOrderNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(snap))
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorDTO{Error: "bad order id"})
		return
	}

	switch err := s.svc.CancelOrder(r.Context(), id); {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	case errors.Is(err, orderbook.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorDTO{Error: err.Error()})
	case errors.Is(err, orderbook.ErrOrderAlreadyCancelled),
		errors.Is(err, orderbook.ErrOrderAlreadyFilled):
		writeJSON(w, http.StatusConflict, errorDTO{Error: err.Error()})
	default:
		s.log.Error().Err(err).Uint64("order_id", uint64(id)).Msg("cancel failed")
		writeJSON(w, http.StatusInternalServerError, errorDTO{Error: "internal error"})
	}
}

func (s *Server) handleBook(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toBookDTO(s.svc.BookSummary()))
}

func (s *Server) handleDepth(w http.ResponseWriter, r *http.Request) {
	levels := 10
	if v := r.URL.Query().Get("levels"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorDTO{Error: "levels must be a positive integer"})
			return
		}
		levels = n
	}
	writeJSON(w, http.StatusOK, toDepthDTO(s.svc.Depth(levels)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func orderID(r *http.Request) (orderbook.OrderID, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 64)
	return orderbook.OrderID(id), err
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
