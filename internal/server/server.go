package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ecuevas97/PartyPal/internal/api/gateway"
	"github.com/ecuevas97/PartyPal/internal/api/rest"
	"github.com/ecuevas97/PartyPal/internal/api/swagger"
	"github.com/ecuevas97/PartyPal/internal/config"
	"github.com/ecuevas97/PartyPal/internal/repository"
	"github.com/ecuevas97/PartyPal/internal/repository/file"
	"github.com/ecuevas97/PartyPal/internal/repository/memory"
	"github.com/ecuevas97/PartyPal/internal/repository/mysql"
	"github.com/ecuevas97/PartyPal/internal/service/events"
)

// Server представляет REST backend событий
type Server struct {
	Mux  *http.ServeMux
	HTTP *http.Server

	// Feed лента изменений. Закрывается при shutdown, чтобы потоковые
	// ответы /events/changes завершились и не держали Shutdown до таймаута
	Feed *events.ChangeFeed

	Config *config.Config

	repo      repository.EventRepository
	closeRepo func() error
	log       *slog.Logger
}

// NewServer создает сервер. Компоненты создаются в Initialize.
func NewServer(cfg *config.Config, log *slog.Logger) *Server {
	return &Server{
		Mux:    http.NewServeMux(),
		Feed:   events.NewChangeFeed(),
		Config: cfg,
		log:    log,
	}
}

// Initialize инициализирует компоненты сервера (Repository → Service → Handler)
func (s *Server) Initialize(ctx context.Context) error {
	repo, closeRepo, err := OpenRepository(ctx, s.Config.Storage)
	if err != nil {
		return err
	}
	s.repo, s.closeRepo = repo, closeRepo
	s.log.Info("initialized repository", "driver", s.Config.Storage.Driver)

	eventSvc := events.NewEventService(repo, s.Feed)
	rest.NewHandler(eventSvc, s.Feed, s.log).Register(s.Mux)

	s.ServeSwagger()

	handler := gateway.Wrap(s.Mux, s.Config.Gateway, s.log)
	s.HTTP = gateway.NewHTTPServer(s.Config.Server.Port, handler, s.Config.Server)
	s.HTTP.RegisterOnShutdown(s.Feed.Close)

	return nil
}

// ServeSwagger регистрирует /swagger.json, если он включен в конфиге
func (s *Server) ServeSwagger() {
	if s.Config.Swagger == nil || !s.Config.Swagger.Enabled {
		s.log.Debug("swagger document is disabled")
		return
	}
	swagger.Register(s.Mux)
	s.log.Info("swagger document available", "path", "/swagger.json")
}

// Run обслуживает запросы до отмены ctx и затем освобождает хранилище
func (s *Server) Run(ctx context.Context) error {
	if s.HTTP == nil {
		return fmt.Errorf("server is not initialized")
	}
	defer s.close()

	return gateway.Serve(ctx, s.HTTP, s.Config.Server.GracefulShutdownTimeout, s.log)
}

func (s *Server) close() {
	if s.closeRepo == nil {
		return
	}
	if err := s.closeRepo(); err != nil {
		s.log.Warn("failed to close repository", "error", err)
	}
}

// OpenRepository выбирает хранилище по storage.driver.
// Возвращаемая функция закрывает соединение, если оно есть.
func OpenRepository(ctx context.Context, cfg *config.ConfigStorage) (repository.EventRepository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case "memory":
		return memory.NewRepository(), noop, nil
	case "file":
		if cfg.Path == "" {
			return nil, nil, fmt.Errorf("storage.path is required for driver %q", cfg.Driver)
		}
		repo, err := file.Open(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("file.Open: %w", err)
		}
		return repo, noop, nil
	case "mysql":
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("storage.dsn is required for driver %q", cfg.Driver)
		}
		repo, err := mysql.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("mysql.Open: %w", err)
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
