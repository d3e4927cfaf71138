package handler

import (
	"net/http"
	"strconv"

	"github.com/xueqianLu/auctionhouse/internal/events"
)

// EventsHandler serves the recorded event log.
type EventsHandler struct {
	log *events.Log
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(l *events.Log) *EventsHandler {
	return &EventsHandler{log: l}
}

// ServeHTTP implements the http.Handler interface. "after" returns every
// record past the given sequence number; otherwise "limit" bounds how
// many of the newest records come back.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	var list []events.Record
	if after := q.Get("after"); after != "" {
		seq, err := strconv.ParseUint(after, 10, 64)
		if err != nil {
			http.Error(w, "Invalid after parameter", http.StatusBadRequest)
			return
		}
		list = h.log.Since(seq)
	} else {
		limit := 0
		if s := q.Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
				return
			}
			limit = n
		}
		list = h.log.Tail(limit)
	}
	if list == nil {
		list = []events.Record{}
	}
	writeJSON(w, http.StatusOK, list)
}
