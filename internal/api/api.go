// Package api is the HTTP surface: health checks, a read-only listing
// of recent expenses and the Telegram webhook endpoint.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/MarcoRizz/Bot-spese-famigliari/internal/ledger"
)

type API struct {
	router *mux.Router
	ledger ledger.Ledger
	bind   string
}

// New builds the router. webhook may be nil when the bot runs on long
// polling; the endpoint is then not registered.
func New(bind string, l ledger.Ledger, webhook http.HandlerFunc) *API {
	a := &API{
		router: mux.NewRouter(),
		ledger: l,
		bind:   bind,
	}

	a.router.HandleFunc("/healthz", a.handleHealth).Methods("GET")
	a.router.HandleFunc("/api/expenses/recent", a.handleRecent).Methods("GET")
	if webhook != nil {
		a.router.HandleFunc("/webhook", webhook).Methods("POST")
	}

	return a
}

func (a *API) Start() error {
	corsOptions := cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}
	handler := cors.New(corsOptions).Handler(a.router)

	log.Printf("API server listening on http://%s", a.bind)
	return http.ListenAndServe(a.bind, handler)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type expenseJSON struct {
	Timestamp   string `json:"timestamp"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
	InsertedBy  string `json:"inserted_by"`
}

// handleRecent returns the last 10 ledger rows, newest first.
func (a *API) handleRecent(w http.ResponseWriter, r *http.Request) {
	rows, err := a.ledger.ReadAll(r.Context())
	if err != nil {
		log.Printf("Failed to read ledger: %v", err)
		http.Error(w, "ledger unavailable", http.StatusBadGateway)
		return
	}

	var data [][]string
	if len(rows) > 1 {
		data = rows[1:]
	}
	if len(data) > 10 {
		data = data[len(data)-10:]
	}

	out := make([]expenseJSON, 0, len(data))
	for i := len(data) - 1; i >= 0; i-- {
		row := data[i]
		out = append(out, expenseJSON{
			Timestamp:   cell(row, ledger.ColTimestamp),
			Amount:      cell(row, ledger.ColAmount),
			Category:    cell(row, ledger.ColCategory),
			Description: cell(row, ledger.ColDescription),
			Date:        cell(row, ledger.ColDate),
			InsertedBy:  cell(row, ledger.ColInsertedBy),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
