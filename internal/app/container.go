package app

import (
	"context"
	"log"
	"time"

	"worklink/internal/config"
	"worklink/internal/database"
	"worklink/internal/database/migration"
	dbpostgres "worklink/internal/database/postgres"
	"worklink/internal/infrastructure/cache"
	"worklink/internal/pkg/imageurl"
	"worklink/internal/pkg/jwt"
	"worklink/internal/repository"
	"worklink/internal/usecase"
	"worklink/internal/usecase/reviewsweep"
	"worklink/internal/ws"
)

// Container wires repositories, usecases and infrastructure once at startup.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB    database.DB
	Cache *cache.Redis
	Hub   *ws.Hub
	JWT   jwt.Service
	Icons *imageurl.Resolver

	Jobs        *usecase.JobLifecycle
	Reviews     *usecase.Reviews
	Chat        *usecase.Chat
	Auth        *usecase.Auth
	Professions *usecase.Professions
	Sweeper     *reviewsweep.Sweeper
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := (migration.Runner{}).Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, err
	}

	redisCache := cache.NewRedis(logger)
	hub := ws.NewHub(logger)
	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)
	icons := imageurl.NewResolver(cfg.Media.ImageBaseURL)

	jobRepo := repository.NewPostgresJobRepository(db)
	reviewRepo := repository.NewPostgresReviewRepository(db)
	chatRepo := repository.NewPostgresChatRepository(db)
	userRepo := repository.NewPostgresUserRepository(db)
	professionRepo := repository.NewPostgresProfessionRepository(db)

	jobsUC := usecase.NewJobLifecycle(jobRepo, redisCache, cfg.Review.Deadline, logger)
	reviewsUC := usecase.NewReviews(reviewRepo, jobRepo, redisCache, cfg.Review, logger)
	chatUC := usecase.NewChat(chatRepo, jobRepo, hub, logger)
	authUC := usecase.NewAuthUsecase(userRepo, jwtSvc)
	professionsUC := usecase.NewProfessions(professionRepo)
	sweeper := reviewsweep.New(jobsUC, redisCache, cfg.Review.SweepInterval, logger)

	return &Container{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Cache:       redisCache,
		Hub:         hub,
		JWT:         jwtSvc,
		Icons:       icons,
		Jobs:        jobsUC,
		Reviews:     reviewsUC,
		Chat:        chatUC,
		Auth:        authUC,
		Professions: professionsUC,
		Sweeper:     sweeper,
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
