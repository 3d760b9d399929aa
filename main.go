package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/MicahParks/keyfunc"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"tasktrack-api/api"
	"tasktrack-api/blob"
	"tasktrack-api/config"
	"tasktrack-api/service"
	"tasktrack-api/storage"
)

const defaultBodyLimitBytes = 12 << 20

func main() {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	store, err := storage.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	blobs, err := blob.NewS3(context.Background(), cfg.S3Bucket, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	logger := log.New()
	svc := service.New(store, blobs, logger, service.Config{
		MaxUploadBytes: cfg.MaxUploadBytes,
		PageSize:       cfg.PageSize,
	})

	var auth *api.Auth
	if cfg.JWTSecret != "" {
		auth = api.NewAuth([]byte(cfg.JWTSecret), cfg.JWTTTL)
	} else {
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewJWKSAuth(jwks)
	}

	var throttle api.Throttle
	if cfg.RedisURL != "" {
		rc := redis.NewClient(redisOptions(cfg.RedisURL))
		throttle = api.NewRedisThrottle(rc, cfg.LoginAttemptLimit, cfg.LoginAttemptWindow)
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	bodyLimit := int64(defaultBodyLimitBytes)
	if cfg.MaxUploadBytes > 0 {
		bodyLimit = cfg.MaxUploadBytes + 2<<20
	}
	e.Use(middleware.BodyLimit(fmt.Sprintf("%d", bodyLimit)))

	api.Register(e, svc, auth, throttle, logger)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// redisOptions parses either a redis:// URL or the comma-separated
// host,password=...,ssl=true form some providers hand out.
func redisOptions(conn string) *redis.Options {
	opts, err := redis.ParseURL(conn)
	if err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}
