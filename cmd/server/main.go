package main

import (
	"flag"
	"log/slog"
	"net/http"
	"time"

	"kareerbot/internal/agent"
	"kareerbot/internal/app"
	"kareerbot/internal/chunker"
	"kareerbot/internal/config"
	"kareerbot/internal/ledger"
	"kareerbot/internal/server"
	"kareerbot/internal/skills"
	"kareerbot/internal/util"
	"kareerbot/internal/vecstore"
	"kareerbot/pkg/ai"
	"kareerbot/pkg/storage"
	"kareerbot/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		util.Fatal("failed to load config", "err", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	gemini, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
	if err != nil {
		util.Fatal("failed to init gemini client", "err", err)
	}
	embedder := ai.NewGeminiEmbedder(gemini, cfg.EmbedModel)
	generator := ai.NewGeminiGenerator(gemini, cfg.ChatModel)

	led, err := ledger.New(cfg.DataRoot, ledger.Options{StrictWrites: cfg.LedgerStrictWrites})
	if err != nil {
		util.Fatal("failed to init ledger", "err", err)
	}
	vectors, err := vecstore.NewManager(cfg.DataRoot, embedder, vecstore.Options{
		TopK:        cfg.RetrievalTopK,
		Concurrency: cfg.EmbedConcurrency,
	})
	if err != nil {
		util.Fatal("failed to init vector store", "err", err)
	}

	var users store.Store
	if cfg.DatabaseURL != "" {
		users, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			util.Fatal("failed to init database", "err", err)
		}
	} else {
		slog.Warn("no databaseURL configured, accounts are kept in memory and lost on restart")
		users = store.NewMemoryStore()
	}
	sessions, err := store.NewJWTSessionStore(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	if err != nil {
		util.Fatal("failed to init session store", "err", err)
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			util.Fatal("failed to init object store", "err", err)
		}
	}

	appCore, err := app.New(app.Deps{
		Users:     users,
		Sessions:  sessions,
		Ledger:    led,
		Vectors:   vectors,
		Splitter:  chunker.New(cfg.ChunkSize, cfg.ChunkOverlap),
		Skills:    skills.NewFilter(generator),
		Agent:     agent.New(generator, agent.NewDuckDuckGoSearcher(cfg.SearchBaseURL), cfg.AgentMaxSteps),
		Generator: generator,
		Objects:   objects,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	httpServer, err := server.New(server.Config{
		App:                        appCore,
		RedisAddr:                  cfg.RedisAddr,
		RedisPassword:              cfg.RedisPassword,
		RegisterRateLimitPerMinute: cfg.RegisterRateLimitPerMinute,
		LoginRateLimitPerMinute:    cfg.LoginRateLimitPerMinute,
		MaxUploadBytes:             cfg.MaxUploadBytes,
	})
	if err != nil {
		util.Fatal("failed to init server", "err", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("kareerbot server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
