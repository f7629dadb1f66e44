package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	httpapi "notes-service/internal/api/http"
	"notes-service/internal/config"
	"notes-service/internal/repository"
	"notes-service/internal/repository/boltdb"
	"notes-service/internal/repository/memory"
	"notes-service/internal/repository/postgres"
	notesService "notes-service/internal/service/notes"
	tagsService "notes-service/internal/service/tags"
)

// Server представляет HTTP сервер приложения вместе с хранилищем
type Server struct {
	HTTPServer *http.Server
	HTTPAddr   string

	// Pool пул соединений PostgreSQL, nil для остальных драйверов
	Pool *pgxpool.Pool
	// Bolt файловое хранилище, nil для остальных драйверов
	Bolt *boltdb.Store

	Config *config.Config
	log    zerolog.Logger
}

// NewServer создает и инициализирует новый экземпляр сервера
func NewServer(cfg *config.Config, log zerolog.Logger) *Server {
	httpAddr := "0.0.0.0:" + strconv.Itoa(cfg.Server.PortHTTP)

	log.Info().
		Int("port_http", cfg.Server.PortHTTP).
		Str("database_driver", cfg.Database.Driver).
		Int("missing_entity_status", cfg.Server.MissingEntityStatus).
		Msg("config loaded")

	return &Server{
		HTTPAddr: httpAddr,
		Config:   cfg,
		log:      log,
	}
}

// Initialize инициализирует компоненты сервера (Repository → Service → Handler)
func (s *Server) Initialize(ctx context.Context) error {
	noteRepo, tagRepo, err := s.initRepositories(ctx)
	if err != nil {
		return err
	}

	noteSvc := notesService.NewNoteService(noteRepo, tagRepo, s.log)
	tagSvc := tagsService.NewTagService(tagRepo)
	s.log.Debug().Msg("initialized note and tag services")

	handler := httpapi.NewHandler(noteSvc, tagSvc, s.Config.Server.MissingEntityStatus)

	// Интерфейс с nil-указателем внутри не равен nil, поэтому передаем pinger явно
	var pinger httpapi.Pinger
	if s.Pool != nil {
		pinger = s.Pool
	}
	router := httpapi.NewRouter(handler, s.Config, s.log, pinger)

	s.HTTPServer = &http.Server{
		Addr:              s.HTTPAddr,
		Handler:           router,
		ReadTimeout:       seconds(s.Config.Server.HTTPReadTimeout),
		WriteTimeout:      seconds(s.Config.Server.HTTPWriteTimeout),
		IdleTimeout:       seconds(s.Config.Server.HTTPIdleTimeout),
		ReadHeaderTimeout: seconds(s.Config.Server.HTTPReadHeaderTimeout),
	}
	return nil
}

func (s *Server) initRepositories(ctx context.Context) (repository.NoteRepository, repository.TagRepository, error) {
	dbCfg := s.Config.Database

	switch dbCfg.Driver {
	case "memory":
		store := memory.NewStore()
		s.log.Info().Msg("initialized in-memory repository")
		return memory.NewNoteRepository(store), memory.NewTagRepository(store), nil
	case "bolt":
		store, err := boltdb.Open(dbCfg.Path)
		if err != nil {
			return nil, nil, err
		}
		s.Bolt = store
		s.log.Info().Str("path", dbCfg.Path).Msg("initialized bolt repository")
		return boltdb.NewNoteRepository(store), boltdb.NewTagRepository(store), nil
	}

	if dbCfg.AutoMigrate {
		version, err := postgres.MigrateUp(dbCfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres.MigrateUp: %w", err)
		}
		s.log.Info().Uint("schema_version", version).Msg("database migrated")
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		return nil, nil, err
	}
	s.Pool = pool
	s.log.Info().Int32("max_conns", pool.Config().MaxConns).Msg("initialized postgres repository")

	return postgres.NewNoteRepository(pool), postgres.NewTagRepository(pool), nil
}

// Start запускает HTTP сервер в горутине
// Возвращает канал ошибок для отслеживания ошибок сервера
func (s *Server) Start() <-chan error {
	errChan := make(chan error, 1)

	go func() {
		s.log.Info().Str("addr", s.HTTPAddr).Msg("HTTP server listening")
		if err := s.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	return errChan
}

// Shutdown выполняет graceful shutdown сервера и закрывает пул соединений
func (s *Server) Shutdown() error {
	s.log.Info().Msg("starting graceful shutdown")

	shutdownTimeout := seconds(s.Config.Server.GracefulShutdownTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	if s.HTTPServer != nil {
		if err = s.HTTPServer.Shutdown(ctx); err != nil {
			s.log.Warn().Err(err).Msg("graceful shutdown timeout, forcing stop")
			_ = s.HTTPServer.Close()
		} else {
			s.log.Info().Msg("HTTP server stopped gracefully")
		}
	}

	// Хранилище закрываем после HTTP сервера, чтобы дать завершиться активным запросам
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.Bolt != nil {
		if closeErr := s.Bolt.Close(); closeErr != nil {
			s.log.Error().Err(closeErr).Msg("failed to close bolt database")
		}
	}
	return err
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
