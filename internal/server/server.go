package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/mznsh11/Blex/internal/auth"
	"github.com/mznsh11/Blex/internal/config"
	"github.com/mznsh11/Blex/internal/db"
	"github.com/mznsh11/Blex/internal/message"
	"github.com/mznsh11/Blex/internal/post"
	"github.com/mznsh11/Blex/internal/social"
	"github.com/mznsh11/Blex/internal/state"
	"github.com/mznsh11/Blex/internal/store"
	"github.com/mznsh11/Blex/internal/stream"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	State  *state.State
	Store  *store.Orchestrator
	Stream *stream.Hub

	querier db.Querier
}

func NewServer(cfg config.Config, pool *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	// a nil *pgxpool.Pool must stay a nil interface, or the store would
	// try to use it
	var querier db.Querier
	if pool != nil {
		querier = pool
	}

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      pool,
		Redis:   redisClient,
		State:   state.New(),
		Store:   store.NewOrchestrator(querier, cfg.DataDir),
		Stream:  stream.NewHub(redisClient),
		querier: querier,
	}

	registerRoutes(s)
	return s
}

// LoadState reconstructs the object graph from storage and installs it.
func (s *Server) LoadState(ctx context.Context) error {
	users, posts, messages, marketplace, err := s.Store.LoadAll(ctx)
	if err != nil {
		return err
	}
	s.State.Replace(users, posts, messages, marketplace)
	return nil
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.querier, s.State, s.Store))
	social.RegisterRoutes(s.App.Group("/social"), social.NewService(s.State, s.Store), jwtMiddleware)
	post.RegisterRoutes(s.App.Group("/posts"), post.NewService(s.State, s.Store), jwtMiddleware)
	message.RegisterRoutes(s.App.Group("/messages"), message.NewService(s.State, s.Store, s.Stream), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
