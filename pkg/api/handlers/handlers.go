package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/cbodonnell/skwarz/pkg/game"
	"github.com/cbodonnell/skwarz/pkg/log"
	"github.com/cbodonnell/skwarz/pkg/matchmaking"
	"github.com/cbodonnell/skwarz/pkg/network"
	"github.com/cbodonnell/skwarz/pkg/tickets"
	"github.com/gorilla/mux"
)

type TicketIssuer interface {
	IssueTicket() (tickets.Ticket, error)
}

type SessionLister interface {
	List() []game.Info
}

type RoomLister interface {
	Rooms() []matchmaking.RoomInfo
}

// ChannelResolver returns the handler serving the channel a request upgrades to.
type ChannelResolver func(r *http.Request) (network.Handler, bool)

// ChannelOptions configure accepted websocket connections.
type ChannelOptions struct {
	OriginPatterns []string
	Conn           network.NewWSConnOptions
	Clients        *network.ClientManager
}

func HandleQueue(issuer TicketIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticket, err := issuer.IssueTicket()
		if err != nil {
			log.Error("failed to issue ticket: %v", err)
			http.Error(w, "Failed to issue ticket", http.StatusInternalServerError)
			return
		}
		writeJSON(w, ticket)
	}
}

// HandleChannel upgrades the request and serves the resolved channel until
// the connection ends.
func HandleChannel(resolve ChannelResolver, opts ChannelOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handler, ok := resolve(r)
		if !ok {
			http.NotFound(w, r)
			return
		}
		conn, err := network.Accept(w, r, opts.OriginPatterns, opts.Conn)
		if err != nil {
			log.Debug("failed to upgrade %s: %v", r.URL.Path, err)
			return
		}
		if opts.Clients != nil {
			opts.Clients.ConnectClient(conn)
			handler = opts.Clients.Track(handler)
		}
		log.Trace("Connection %s opened on %s", conn.ID(), r.URL.Path)
		conn.Serve(r.Context(), handler)
	}
}

// SessionResolver finds the session named by the sessionID route variable.
func SessionResolver(sessions *game.Manager) ChannelResolver {
	return func(r *http.Request) (network.Handler, bool) {
		s, ok := sessions.Get(mux.Vars(r)["sessionID"])
		if !ok {
			return nil, false
		}
		return s, true
	}
}

// StaticResolver always serves h.
func StaticResolver(h network.Handler) ChannelResolver {
	return func(*http.Request) (network.Handler, bool) {
		return h, true
	}
}

type Overview struct {
	Rooms    []matchmaking.RoomInfo `json:"rooms"`
	Sessions []game.Info            `json:"sessions"`
}

func HandleListSessions(rooms RoomLister, sessions SessionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Overview{
			Rooms:    rooms.Rooms(),
			Sessions: sessions.List(),
		})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
