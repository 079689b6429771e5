package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/skwarz/pkg/api/handlers"
	"github.com/cbodonnell/skwarz/pkg/api/middleware"
	"github.com/cbodonnell/skwarz/pkg/game"
	"github.com/cbodonnell/skwarz/pkg/log"
	"github.com/cbodonnell/skwarz/pkg/matchmaking"
	"github.com/cbodonnell/skwarz/pkg/network"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server  *http.Server
	tls     *TLSConfig
	clients *network.ClientManager
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port int
	TLS  *TLSConfig
	// Path prefixes every route
	Path         string
	AllowOrigins []string
	ConnOptions  network.NewWSConnOptions
	Coordinator  *matchmaking.Coordinator
	Sessions     *game.Manager
}

// NewAPIServer creates a new http.Server serving the ticket endpoint and the
// matchmaking and session channels.
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	clients := network.NewClientManager()
	channel := handlers.ChannelOptions{
		OriginPatterns: opts.AllowOrigins,
		Conn:           opts.ConnOptions,
		Clients:        clients,
	}

	r := mux.NewRouter()
	r.Use(middleware.Logging)
	routes := r.PathPrefix(opts.Path).Subrouter()
	routes.Handle("/queue", middleware.NewCORSMiddleware(opts.AllowOrigins)(handlers.HandleQueue(opts.Coordinator))).
		Methods(http.MethodGet, http.MethodOptions)
	routes.HandleFunc("/ws", handlers.HandleChannel(handlers.StaticResolver(opts.Coordinator), channel)).
		Methods(http.MethodGet)
	routes.HandleFunc("/game/{sessionID}/ws", handlers.HandleChannel(handlers.SessionResolver(opts.Sessions), channel)).
		Methods(http.MethodGet)
	routes.HandleFunc("/sessions", handlers.HandleListSessions(opts.Coordinator, opts.Sessions)).
		Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: r,
	}
	return &APIServer{
		server:  server,
		tls:     opts.TLS,
		clients: clients,
	}
}

func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the APIServer
func (s *APIServer) Start() error {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return nil
		}
		return fmt.Errorf("API server error: %v", err)
	}
	return nil
}

// Stop closes the open channels and stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	s.clients.CloseAll()
	return s.server.Shutdown(ctx)
}
