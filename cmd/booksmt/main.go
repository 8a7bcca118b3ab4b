package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/booksmt/booksmt/internal/api"
	"github.com/booksmt/booksmt/internal/auth"
	"github.com/booksmt/booksmt/internal/catalog"
	"github.com/booksmt/booksmt/internal/config"
	"github.com/booksmt/booksmt/internal/covers"
	"github.com/booksmt/booksmt/internal/recommend"
	"github.com/booksmt/booksmt/internal/search"
	"github.com/booksmt/booksmt/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Catalog and tables load once; everything downstream shares them
	// read-only.
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("Failed to load catalog", "error", err)
		os.Exit(1)
	}

	dir, err := auth.LoadDirectory(cfg.UsersPath)
	if err != nil {
		slog.Error("Failed to load user directory", "error", err)
		os.Exit(1)
	}

	userRows, err := recommend.LoadUserRows(cfg.RecommendationsPath)
	if err != nil {
		slog.Warn("Recommendation table unavailable, continuing without it", "error", err)
	}
	simRows, err := recommend.LoadSimilarity(cfg.SimilarityPath)
	if err != nil {
		slog.Warn("Similarity table unavailable, continuing without it", "error", err)
	}
	interactions, err := recommend.LoadInteractions(cfg.InteractionsPath)
	if err != nil {
		slog.Warn("Interaction log unavailable, continuing without it", "error", err)
	}

	rec := recommend.NewResolver(cat, userRows, simRows, interactions, cfg.TopListMode, cfg.TopListSize)
	ranker := search.NewRanker(cat)

	var cache *covers.Cache
	if cfg.CoverCachePath != "" {
		cache, err = covers.NewCache(cfg.CoverCachePath)
		if err != nil {
			slog.Warn("Cover cache unavailable, lookups will not be persisted", "error", err)
			cache = nil
		} else {
			defer func() { _ = cache.Close() }()
		}
	}

	providers := []covers.Provider{
		covers.NewGoogleBooksProvider(cfg.GoogleBooksAPIKey),
		covers.NewOpenLibraryProvider(),
	}
	cov := covers.NewResolver(cat, providers, cache, cfg.LookupRate, cfg.LookupTimeout)

	sessions := session.NewStore()
	machine := session.NewMachine(cat)

	handler := api.NewHandler(cat, cov, rec, ranker, machine, dir)
	authHandler := api.NewAuthHandler(dir, sessions, machine)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", handler.HealthCheck)

	// API routes
	apiGroup := r.Group("/api")
	{
		// Auth routes (public)
		apiGroup.POST("/auth/login", authHandler.Login)

		// Everything else requires a live session
		protected := apiGroup.Group("")
		protected.Use(auth.SessionMiddleware(sessions))
		{
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/session", handler.GetSessionState)

			protected.GET("/main", handler.MainPage)
			protected.GET("/recommendations/:userID", handler.Recommendations)
			protected.GET("/search", handler.Search)
			protected.GET("/books/:id", handler.GetBook)

			protected.POST("/navigation/back", handler.Back)
			protected.POST("/navigation/checkout", handler.GoCheckout)
			protected.POST("/navigation/main", handler.GoMain)

			protected.GET("/basket", handler.GetBasket)
			protected.POST("/basket/:id", handler.AddToBasket)
			protected.DELETE("/basket/:id", handler.RemoveFromBasket)
			protected.DELETE("/basket", handler.ClearBasket)

			protected.POST("/checkout/confirm", handler.ConfirmCheckout)
		}
	}

	slog.Info("booksmt server starting", "addr", cfg.ListenAddr, "books", cat.Len())
	if err := r.Run(cfg.ListenAddr); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
