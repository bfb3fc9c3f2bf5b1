package cli

import (
	"context"
	"net/http"
	"time"

	"classroom-quiz/internal/app"
	"classroom-quiz/internal/config"
	"classroom-quiz/internal/domain"
	"classroom-quiz/internal/infra/memory"
	pgstore "classroom-quiz/internal/infra/postgres"
	"classroom-quiz/internal/infra/rabbit"
	redisstore "classroom-quiz/internal/infra/redis"
	transport "classroom-quiz/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgstore.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var bank app.QuestionBank
	if redisClient != nil {
		bank = redisstore.NewQuestionBank(redisClient, loader, quizTTL)
	} else {
		bank = memory.NewQuestionBank(loader, quizTTL)
	}

	var sinks []app.ResultSink
	if pool != nil {
		sinks = append(sinks, pgstore.NewResultsStore(pool))
	}
	if redisClient != nil {
		resultsTTL := config.TTLDuration(cfg.Quiz.ResultsTTL, 24*time.Hour)
		sinks = append(sinks, redisstore.NewResultsArchive(redisClient, resultsTTL))
	}
	if cfg.Rabbit.URL != "" {
		publisher, err := rabbit.Dial(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
		if err != nil {
			return err
		}
		defer publisher.Close()
		sinks = append(sinks, publisher)
	}

	var rooms app.RoomRepository
	if redisClient != nil {
		store := redisstore.NewRoomStore(redisClient, redisTTL)
		go keepRoomsAlive(ctx, store, redisTTL/2, log)
		rooms = store
	} else {
		rooms = memory.NewRoomStore()
	}

	service := app.NewQuizService(rooms, bank, log, sinks...)
	wsHandler := transport.NewWSHandler(service, log, transport.WSOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ReadLimit:      cfg.Server.ReadLimit,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, wsHandler, cfg.Server.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down server...")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func keepRoomsAlive(ctx context.Context, store *redisstore.RoomStore, every time.Duration, log logrus.FieldLogger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Touch(ctx); err != nil {
				log.WithError(err).Warn("refresh room liveness")
			}
		}
	}
}

// sampleQuizzes seeds the bank when no Postgres is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"demo": {
			ID:    "demo",
			Title: "Demo quiz",
			Questions: []domain.QuestionInput{
				{
					Type:           string(domain.TypeMultipleChoice),
					Text:           "What is 2 + 2?",
					Answers:        []any{"3", "4", "5", "22"},
					CorrectIndices: []any{float64(1)},
					Duration:       float64(20),
				},
				{
					Type:           string(domain.TypeTrueFalse),
					Text:           "Go has generics.",
					Answers:        []any{"True", "False"},
					CorrectIndices: []any{float64(0)},
				},
				{
					Type:            string(domain.TypeInput),
					Text:            "Name the keyword that starts a goroutine.",
					AcceptedAnswers: []any{"go"},
				},
				{
					Type:  string(domain.TypeMatching),
					Text:  "Match each package to its purpose.",
					Left:  []any{"net/http", "encoding/json", "sync"},
					Right: []any{"mutexes", "HTTP servers", "JSON codec"},
					CorrectPairs: []any{
						map[string]any{"left": "net/http", "right": "HTTP servers"},
						map[string]any{"left": "encoding/json", "right": "JSON codec"},
						map[string]any{"left": "sync", "right": "mutexes"},
					},
				},
			},
		},
	}
}
