// Package server wires the scene runtime and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/louisbranch/courtroom.space/internal/platform/config"
	"github.com/louisbranch/courtroom.space/internal/platform/timeouts"
	sceneapi "github.com/louisbranch/courtroom.space/internal/services/scene/api/http/scene"
	"github.com/louisbranch/courtroom.space/internal/services/scene/attorney"
	"github.com/louisbranch/courtroom.space/internal/services/scene/authz"
	"github.com/louisbranch/courtroom.space/internal/services/scene/cache"
	"github.com/louisbranch/courtroom.space/internal/services/scene/service"
	"github.com/louisbranch/courtroom.space/internal/services/scene/storage"
	scenebbolt "github.com/louisbranch/courtroom.space/internal/services/scene/storage/bbolt"
	scenesqlite "github.com/louisbranch/courtroom.space/internal/services/scene/storage/sqlite"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreBbolt  = "bbolt"
)

// Env holds the runtime settings read from the environment.
type Env struct {
	Store      string        `env:"COURTROOM_SPACE_SCENE_STORE" envDefault:"sqlite"`
	DBPath     string        `env:"COURTROOM_SPACE_SCENE_DB_PATH"`
	RedisAddr  string        `env:"COURTROOM_SPACE_SCENE_REDIS_ADDR"`
	CacheTTL   time.Duration `env:"COURTROOM_SPACE_SCENE_CACHE_TTL" envDefault:"10m"`
	RosterPath string        `env:"COURTROOM_SPACE_SCENE_ROSTER_PATH"`
}

// LoadEnv reads Env and fills the default database path for the store.
func LoadEnv() (Env, error) {
	var cfg Env
	if err := config.ParseEnv(&cfg); err != nil {
		return Env{}, err
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case "", StoreSQLite:
		cfg.Store = StoreSQLite
		cfg.DBPath = config.DataPath(cfg.DBPath, "scenes.db")
	case StoreBbolt:
		cfg.DBPath = config.DataPath(cfg.DBPath, "scenes.bolt")
	default:
		return Env{}, fmt.Errorf("unknown scene store %q", cfg.Store)
	}
	return cfg, nil
}

// Runtime is the scene service with its storage resources.
type Runtime struct {
	Service *service.Service
	store   io.Closer
	redis   *redis.Client
}

// OpenRuntime opens the configured store, optional cache and roster.
func OpenRuntime(ctx context.Context, env Env) (*Runtime, error) {
	roster, err := loadRoster(env.RosterPath)
	if err != nil {
		return nil, err
	}
	base, closer, err := openStore(ctx, env)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{store: closer}

	var store storage.SceneStore = base
	client, err := cache.Dial(ctx, env.RedisAddr)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if client != nil {
		rt.redis = client
		store = cache.New(base, client, env.CacheTTL)
		log.Printf("scene cache enabled addr=%s ttl=%s", env.RedisAddr, env.CacheTTL)
	}
	rt.Service = service.NewService(store, roster)
	return rt, nil
}

// Close releases the store and cache connections.
func (rt *Runtime) Close() {
	if rt == nil {
		return
	}
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			log.Printf("close scene cache: %v", err)
		}
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			log.Printf("close scene store: %v", err)
		}
	}
}

// Server hosts the scene HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	runtime    *Runtime
}

// New creates a configured scene server listening on the provided port.
func New(ctx context.Context, port int) (*Server, error) {
	return NewWithAddr(ctx, fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured scene server for the provided address.
func NewWithAddr(ctx context.Context, addr string) (*Server, error) {
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	grants, err := authz.LoadWriterGrantConfigFromEnv(time.Now)
	if err != nil {
		return nil, err
	}
	if !grants.Enabled() {
		log.Printf("writer grants disabled; scene writes are open")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	runtime, err := OpenRuntime(ctx, env)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	handler := sceneapi.NewHandler(runtime.Service, grants)
	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           handler.Routes(),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		runtime: runtime,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a scene server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(ctx, port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("scene server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases scene server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.runtime.Close()
}

type closingStore interface {
	storage.SceneStore
	io.Closer
}

func openStore(ctx context.Context, env Env) (storage.SceneStore, io.Closer, error) {
	if dir := filepath.Dir(env.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	var (
		store closingStore
		err   error
	)
	switch env.Store {
	case StoreBbolt:
		store, err = scenebbolt.Open(env.DBPath, timeouts.StoreOpen)
	default:
		store, err = scenesqlite.Open(ctx, env.DBPath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open scene %s store: %w", env.Store, err)
	}
	return store, store, nil
}

func loadRoster(path string) (*attorney.Roster, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return attorney.DefaultRoster(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	roster, err := attorney.LoadRoster(f)
	if err != nil {
		return nil, fmt.Errorf("load roster %s: %w", path, err)
	}
	return roster, nil
}
