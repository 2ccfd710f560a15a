// Copyright 2026 The PDB Authors
// This file is part of pdb.
//
// pdb is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// pdb is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with pdb. If not, see <http://www.gnu.org/licenses/>.

// Package rpc is the worker's minimal admin surface (A4): health, metrics,
// and a cursor-decoding debug endpoint. It parses no query language and
// carries no replica-sync or admin-CLI business logic — those remain the
// named external interfaces of spec.md §6.
package rpc

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erigontech/pdb/cursor"
	"github.com/erigontech/pdb/iter"
	"github.com/erigontech/pdb/ticket"
)

// Metrics is the set of prometheus collectors the admin surface reports.
// One Metrics should be constructed per worker process and registered
// against a dedicated registry, so multiple test workers in one binary
// don't collide on global registration.
type Metrics struct {
	registry    *prometheus.Registry
	ticketHead  prometheus.GaugeFunc
	ticketDepth prometheus.GaugeFunc
	budgetSpent prometheus.Histogram
}

// NewMetrics wires the ticket manager's queue depth as live gauges and
// registers a histogram RecordBudgetSpend can feed from the Read/Write
// Engines' per-request budget consumption.
func NewMetrics(tm *ticket.Manager) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.ticketHead = promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pdb",
		Name:      "ticket_head_number",
		Help:      "Sequence number of the ticket currently at the head of the printer.",
	}, func() float64 { return float64(tm.Stats().HeadNumber) })

	m.ticketDepth = promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pdb",
		Name:      "ticket_outstanding",
		Help:      "Number of tickets currently issued but not yet released.",
	}, func() float64 { return float64(tm.Stats().Outstanding) })

	m.budgetSpent = promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
		Namespace: "pdb",
		Name:      "request_budget_spent",
		Help:      "Units of pdb_budget charged per completed request (read or write).",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
	})

	return m
}

// RecordBudgetSpend reports how much of a Budget a finished request
// consumed, for the request_budget_spent histogram.
func (m *Metrics) RecordBudgetSpend(units int64) {
	if units < 0 {
		units = 0
	}
	m.budgetSpent.Observe(float64(units))
}

// Server bundles the router dependencies: a ticket manager for queue
// stats and an iter.Backend for thawing cursors handed to /debug/cursor.
type Server struct {
	Tickets *ticket.Manager
	Backend iter.Backend
	Metrics *Metrics
	started time.Time
}

// NewServer constructs a Server; call Router to get the http.Handler to
// mount.
func NewServer(tm *ticket.Manager, backend iter.Backend) *Server {
	return &Server{
		Tickets: tm,
		Backend: backend,
		Metrics: NewMetrics(tm),
		started: time.Now(),
	}
}

// Router builds the chi mux: /healthz, /metrics, /stats, /debug/cursor.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/stats", s.handleStats)
	r.Get("/debug/cursor", s.handleDebugCursor)
	r.Handle("/metrics", promhttp.HandlerFor(s.Metrics.registry, promhttp.HandlerOpts{}))

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

type statsResponse struct {
	UptimeSeconds   float64 `json:"uptime_seconds"`
	TicketHead      int64   `json:"ticket_head_number"`
	TicketOutstand  int     `json:"ticket_outstanding"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.Tickets.Stats()
	resp := statsResponse{
		UptimeSeconds:  time.Since(s.started).Seconds(),
		TicketHead:     st.HeadNumber,
		TicketOutstand: st.Outstanding,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type cursorDebugResponse struct {
	Variant  string `json:"variant"`
	Position int64  `json:"position"`
	State    struct {
		CheckCost int64 `json:"check_cost"`
		NextCost  int64 `json:"next_cost"`
		FindCost  int64 `json:"find_cost"`
		N         int64 `json:"n"`
		NIsExact  bool  `json:"n_is_exact"`
		Sorted    bool  `json:"sorted"`
	} `json:"state"`
}

// handleDebugCursor thaws the `c` query parameter's frozen cursor text
// (spec.md §4.8) against s.Backend and renders its shape and carried
// statistics, without executing it further — a read-only introspection
// aid, never a query entry point.
func (s *Server) handleDebugCursor(w http.ResponseWriter, r *http.Request) {
	frozen := r.URL.Query().Get("c")
	if frozen == "" {
		http.Error(w, "missing required query parameter \"c\"", http.StatusBadRequest)
		return
	}

	it, position, state, err := cursor.Thaw(s.Backend, frozen)
	if err != nil {
		http.Error(w, "cannot thaw cursor: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp := cursorDebugResponse{
		Variant:  string(it.Variant()),
		Position: position,
	}
	resp.State.CheckCost = state.CheckCost
	resp.State.NextCost = state.NextCost
	resp.State.FindCost = state.FindCost
	resp.State.N = state.N
	resp.State.NIsExact = state.NIsExact
	resp.State.Sorted = state.Sorted

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
