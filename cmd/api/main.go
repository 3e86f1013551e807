package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	nutritionHandler "nutristat-api/internal/handlers/nutrition"
	"nutristat-api/internal/catalog"
	"nutristat-api/internal/history"
	"nutristat-api/internal/middleware"
	"nutristat-api/internal/model"
	"nutristat-api/internal/routers"
	"nutristat-api/internal/shared"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/manifold-inc/manifold-sdk/lib/eflag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Flags / ENV Variables
	port := flag.Int("port", shared.DefaultPort, "Port to listen on")
	debug := flag.Bool("debug", false, "Debug enabled")
	catalogPath := flag.String("catalog-path", "food-data.csv", "Food dataset csv")
	modelPath := flag.String("model-path", "model_nutrition_stat.json", "Exported model weights")
	modelURL := flag.String("model-url", "", "Model server base url, overrides model-path")
	modelName := flag.String("model-name", shared.DefaultModelName, "Model name on the model server")
	historyBackend := flag.String("history-backend", history.BackendFile, "History backend: file, sql or redis")
	historyPath := flag.String("history-path", shared.DefaultHistoryPath, "History file for the file backend")
	historyDriver := flag.String("history-driver", "sqlite", "SQL driver: mysql, sqlite or postgres")
	dsn := flag.String("dsn", "", "SQL DSN for the sql backend")
	redisAddr := flag.String("redis-addr", "", "Redis host:port for the redis backend")
	redisKey := flag.String("redis-key", shared.DefaultHistoryRedisKey, "Redis list key for the redis backend")
	metricsAPIKey := flag.String("metrics-api-key", "", "Metrics api key")
	rateLimit := flag.Float64("rate-limit", shared.DefaultRateLimit, "Requests per second per client, 0 disables")
	rateBurst := flag.Int("rate-burst", shared.DefaultRateBurst, "Rate limiter burst")

	// .env is optional; real environment variables win
	_ = godotenv.Load()
	err := eflag.SetFlagsFromEnvironment()
	if err != nil {
		panic(err)
	}
	flag.Parse()

	var logger *zap.Logger
	if !*debug {
		logger, err = zap.NewProduction()
		if err != nil {
			panic("Failed init logger")
		}
	}
	if *debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic("Failed init logger")
		}
	}
	log := logger.Sugar()
	defer func() {
		_ = log.Sync()
	}()

	// Catalog and model load concurrently; either failing is fatal
	var foods *catalog.Catalog
	var classifier model.Classifier
	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		c, err := catalog.Load(*catalogPath)
		if err != nil {
			return err
		}
		foods = c
		log.Infow("Food dataset loaded", "path", *catalogPath, "rows", c.Len())
		return nil
	})
	g.Go(func() error {
		if *modelURL != "" {
			client := model.NewServingClient(*modelURL, *modelName, shared.DefaultModelHTTPTimeout, log)
			ctx, cancel := context.WithTimeout(gctx, shared.ModelProbeTimeout)
			defer cancel()
			if err := client.Probe(ctx); err != nil {
				return err
			}
			classifier = client
			log.Infow("Model server ready", "url", *modelURL, "model", *modelName)
			return nil
		}
		network, err := model.LoadNetwork(*modelPath)
		if err != nil {
			return err
		}
		classifier = network
		log.Infow("Model loaded", "path", *modelPath, "layers", len(network.Layers))
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Fatalw("Failed startup", "error", err)
	}

	store, err := history.Open(context.Background(), history.Config{
		Backend:   *historyBackend,
		Path:      *historyPath,
		Driver:    *historyDriver,
		DSN:       *dsn,
		RedisAddr: *redisAddr,
		RedisKey:  *redisKey,
	}, log)
	if err != nil {
		log.Fatalw("Failed opening history store", "backend", *historyBackend, "error", err)
	}
	defer func() {
		_ = store.Close()
	}()

	nh := nutritionHandler.NewNutritionHandler(model.NewAdapter(classifier), foods, store, *historyBackend, log)

	e := echo.New()
	e.HideBanner = true
	e.GET(("/ping"), func(c echo.Context) error {
		return c.String(200, "")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.NewAPIKeyMiddleware(*metricsAPIKey))
	base := e.Group("")
	base.Use(emw.CORS())
	base.Use(middleware.NewRecoverMiddleware(log))
	base.Use(middleware.NewTrackMiddleware(log))
	base.Use(middleware.NewRateLimitMiddleware(*rateLimit, *rateBurst, log))

	// Register routes
	routers.RegisterNutritionRoutes(base, nh)
	routers.RegisterMCPRoutes(base, nh)

	go func() {
		log.Infow("Starting server", "port", *port, "history_backend", *historyBackend)
		if err := e.Start(fmt.Sprintf(":%d", *port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("shutting down the server", "error", err)
		}
	}()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// Wait for interrupt signal to gracefully shut down the server with a timeout of 10 seconds.
	<-ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), shared.DefaultShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorw("Failed graceful shutdown", "error", err)
	}
}
