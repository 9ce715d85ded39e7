package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jumak-kr/jumakweb/internal/api"
	"github.com/jumak-kr/jumakweb/internal/auth"
	"github.com/jumak-kr/jumakweb/internal/backend"
	"github.com/jumak-kr/jumakweb/internal/config"
	"github.com/jumak-kr/jumakweb/internal/service"
	"github.com/jumak-kr/jumakweb/internal/store"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	cfg := config.FromEnv()

	repo, err := store.Shared(cfg.PostgresURL(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open store")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis ping failed, caching disabled")
		rdb = nil
	}

	backendURL, err := url.Parse(cfg.BackendURL)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.BackendURL).Msg("invalid backend url")
	}

	apiClient := backend.NewClient(cfg.BackendURL, nil, log)
	svc := service.NewService(repo, rdb, apiClient, log)
	authSvc := auth.NewService(auth.ProviderConfig{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		AuthURL:      cfg.OAuthAuthURL,
		TokenURL:     cfg.OAuthTokenURL,
		RedirectURL:  cfg.OAuthRedirectURL,
	}, cfg.SessionSecret, log)

	imageClient := &http.Client{Timeout: 30 * time.Second}
	handler := api.NewHandler(svc, authSvc, backendURL, imageClient, log)

	router := gin.Default()
	api.RegisterRoutes(router, handler)

	log.Info().Str("port", cfg.Port).Msg("listening")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
