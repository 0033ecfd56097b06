package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/insightloop/interview-insights/pkg/validator"

	"github.com/insightloop/interview-insights/internal/adapter/handler"
	"github.com/insightloop/interview-insights/internal/adapter/repository"
	"github.com/insightloop/interview-insights/internal/infrastructure/cache"
	"github.com/insightloop/interview-insights/internal/infrastructure/database"
	"github.com/insightloop/interview-insights/internal/infrastructure/storage"
	"github.com/insightloop/interview-insights/internal/infrastructure/watch"
	"github.com/insightloop/interview-insights/internal/usecase/grouping"
	"github.com/insightloop/interview-insights/internal/usecase/pipeline"
	"github.com/insightloop/interview-insights/internal/usecase/quotes"
	"github.com/insightloop/interview-insights/internal/usecase/speaker"
	"github.com/insightloop/interview-insights/pkg/config"
	"github.com/insightloop/interview-insights/pkg/llm"
	"github.com/insightloop/interview-insights/pkg/transcribe"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Schema is managed with sql-migrate. The switch exists so production
	// deployments can apply migrations out of band in CI/CD.
	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db, "migrations"); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; apply them with sql-migrate in CI/CD")
	}

	// Initialize the refinement cache. Redis when configured, otherwise an
	// in-process store.
	var cacheStore cache.Store
	if cfg.Redis.Host != "" {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		cacheStore = cache.NewRedisStore(redisClient, logger)
	} else {
		log.Println("📦 Redis not configured, using in-memory cache")
		cacheStore = cache.NewMemoryStore()
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	runRepo := repository.NewRunRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	speakerRepo := repository.NewSpeakerRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	placementRepo := repository.NewPlacementRepository(db)

	// Initialize the text-generation client
	log.Println("🤖 Initializing LLM client...")
	var llmClient llm.Client
	switch cfg.LLM.Provider {
	case "gemini":
		llmClient, err = llm.NewGeminiClient(&cfg.LLM)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
	default:
		llmClient = llm.NewGroqClient(&cfg.LLM)
	}

	// Initialize transcription
	var media transcribe.Transcriber
	if cfg.Assembly.APIKey != "" {
		log.Println("🎙️  Initializing AssemblyAI transcriber...")
		media = transcribe.NewAssemblyAI(&cfg.Assembly, logger)
	} else {
		log.Println("⚠️  AssemblyAI not configured; sessions without transcripts will degrade")
	}
	subtitles := transcribe.NewSubtitleReader(logger)

	// Initialize the speaker resolver
	lexicon, err := speaker.LoadLexicon(cfg.LLM.LexiconPath)
	if err != nil {
		log.Fatalf("Failed to load phrase lexicon: %v", err)
	}
	refiner := speaker.NewLLMRefiner(
		llmClient,
		cacheStore,
		time.Duration(cfg.Tuning.CacheTTLMin)*time.Minute,
		time.Duration(cfg.Tuning.LLMTimeoutSec)*time.Second,
		logger,
	)
	resolver := speaker.NewService(refiner, speaker.Options{
		Lexicon:          lexicon,
		QuestionRatioMin: cfg.Tuning.QuestionRatioMin,
		PhraseHitsMin:    cfg.Tuning.PhraseHitsMin,
		WindowSec:        cfg.Tuning.RefinementWindowSec,
	}, logger)

	// Initialize quote collaborators
	extractor := quotes.NewLLMExtractor(llmClient, logger)
	screens := quotes.NewScreenClusterer(llmClient, logger)
	themes := quotes.NewThemeGrouper(llmClient, logger)

	// Initialize the archive client
	var archiver pipeline.Archiver
	if cfg.Storage.Endpoint != "" {
		log.Println("🗄️  Initializing MinIO archive...")
		minioClient, err := storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO: %v", err)
		}
		archiver = minioClient
	}

	// Wire the pipeline
	log.Println("🧩 Wiring pipeline...")
	pipelineSvc := pipeline.NewService(
		grouping.NewService(logger),
		resolver,
		media,
		subtitles,
		extractor,
		screens,
		themes,
		pipeline.Repos{
			Runs:       runRepo,
			Sessions:   sessionRepo,
			Speakers:   speakerRepo,
			Quotes:     quoteRepo,
			Placements: placementRepo,
		},
		archiver,
		pipeline.Options{StageConcurrency: cfg.Tuning.StageConcurrency},
		logger,
	)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	runsHandler := handler.NewRuns(pipelineSvc, runRepo, sessionRepo, speakerRepo, quoteRepo, placementRepo, logger)
	router := handler.NewRouter(cfg, runsHandler)
	router.Setup(e)

	// Intake watcher
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if cfg.Intake.WatchEnabled && cfg.Intake.Root != "" {
		log.Printf("👀 Watching intake root %s", cfg.Intake.Root)
		watcher := watch.NewWatcher(
			cfg.Intake.Root,
			time.Duration(cfg.Intake.SettleSeconds)*time.Second,
			func(ctx context.Context, studyPath string) {
				if _, err := pipelineSvc.Run(ctx, studyPath); err != nil {
					logger.Error("intake run failed",
						zap.String("study_path", studyPath),
						zap.Error(err),
					)
				}
			},
			logger,
		)
		go func() {
			if err := watcher.Run(watchCtx); err != nil && watchCtx.Err() == nil {
				logger.Error("intake watcher stopped", zap.Error(err))
			}
		}()
	}

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	stopWatch()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
