package serv

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/pgqlgate/pgqlgate/cdc"
	"github.com/pgqlgate/pgqlgate/core"
	"github.com/pgqlgate/pgqlgate/serv/internal/util"
	"github.com/pgqlgate/pgqlgate/ws"
)

// roleHeader is the HTTP header carrying the database role a request
// executes under, per spec.md §6.
const roleHeader = "X-Database-Role"

// Server owns the HTTP surface: one POST endpoint for queries/mutations and
// one WebSocket endpoint for subscriptions, both backed by a shared Engine.
type Server struct {
	cfg    *ServConfig
	log    *zap.SugaredLogger
	pool   *pgxpool.Pool
	engine *core.Engine
	hub    *cdc.Hub
	cdcLis *cdc.Listener
}

// New builds a Server: connects the pool, constructs the engine, and — if
// cfg.CDC.Enabled — constructs the logical replication listener feeding the
// fan-out hub that backs subscriptions; Run starts the listener.
func New(ctx context.Context, cfg *ServConfig) (*Server, error) {
	log := util.NewLogger(cfg.LogJSON).Sugar()

	pool, err := pgxpool.New(ctx, cfg.DB.ConnString)
	if err != nil {
		return nil, err
	}

	var hub *cdc.Hub
	var lis *cdc.Listener
	var engineHub core.Hub
	if cfg.CDC.Enabled {
		hub = cdc.NewHub()
		lis = cdc.New(cdc.Config{
			ConnString:  cfg.DB.ConnString,
			Publication: cfg.CDC.Publication,
			Slot:        cfg.CDC.Slot,
		}, log, hub.Publish)
		engineHub = newHubAdapter(hub)
	}

	engine, err := core.New(pool, cfg.Config, log, engineHub)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Server{cfg: cfg, log: log, pool: pool, engine: engine, hub: hub, cdcLis: lis}, nil
}

// Run starts the CDC listener (if enabled) and serves HTTP until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.cdcLis != nil {
		go s.cdcLis.Start(ctx)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", s.handleGraphQL)
	mux.Handle("/graphql/ws", ws.NewHandler(s.engine, s.log))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	srv := &http.Server{
		Addr:         s.cfg.HostPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Infow("pgqlgate listening", "addr", s.cfg.HostPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Close() {
	if s.cdcLis != nil {
		s.cdcLis.Stop()
	}
	s.pool.Close()
}

type graphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]string{{"message": err.Error()}},
		})
		return
	}

	role := r.Header.Get(roleHeader)
	if role == "" {
		role = s.cfg.Security.DefaultRole
	}

	result := s.engine.Execute(r.Context(), req.Query, req.Variables, req.OperationName, role)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
