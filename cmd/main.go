package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weathernet/internal/handlers"
	"weathernet/internal/logger"
	"weathernet/internal/poller"
	"weathernet/internal/repository"
	"weathernet/internal/repository/db"
	"weathernet/internal/server"
	"weathernet/internal/service"
	"weathernet/internal/state"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const (
	defaultPort    = "8080"
	defaultSimTick = 15 * time.Second
	redisPingWait  = 3 * time.Second
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// connect backing stores
	rdb := newRedisClient(log)
	defer func() {
		if rdb != nil {
			_ = rdb.Close()
		}
	}()

	archiveDB := openArchive(log)
	defer func() {
		if archiveDB != nil {
			_ = archiveDB.Close()
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(rdb, archiveDB)
	services := service.NewService(repos, service.Options{
		QueryDevices: viper.GetStringSlice("query.devices"),
		DefaultLimit: viper.GetInt("query.default_limit"),
	})

	// dashboard poll service against our own query endpoint
	poll := newPollService(log)
	services.Dashboard = poll

	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the development feed simulator when enabled
	if viper.GetBool("simulator.enabled") {
		tick := viper.GetDuration("simulator.tick")
		if tick <= 0 {
			tick = defaultSimTick
		}
		go services.Simulator.Run(ctx, tick)
	}

	poll.Start(0)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, poll, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// newRedisClient connects to the reading store. Missing configuration or an
// unreachable host degrades to nil: reads serve empty data instead of
// crashing the process.
func newRedisClient(log *logger.Logger) *redis.Client {
	addr := viper.GetString("redis.addr")
	if addr == "" {
		log.Warnw("redis.addr not set; reading store disabled, serving empty data")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingWait)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unreachable; reading store disabled", "addr", addr, "err", err)
		_ = client.Close()
		return nil
	}

	log.Infow("connected to redis", "addr", addr)
	return client
}

// openArchive opens the SQLite reading archive when enabled.
func openArchive(log *logger.Logger) *sql.DB {
	if !viper.GetBool("archive.enabled") {
		return nil
	}
	path := viper.GetString("archive.path")
	if path == "" {
		path = "readings.db"
	}
	archiveDB, err := db.InitDB(path)
	if err != nil {
		log.Warnw("failed to open reading archive; archiving disabled", "path", path, "err", err)
		return nil
	}
	return archiveDB
}

// newPollService builds the dashboard poller against the local query endpoint.
func newPollService(log *logger.Logger) *poller.Service {
	endpoint := viper.GetString("poll.endpoint")
	if endpoint == "" {
		port := viper.GetString("port")
		if port == "" {
			port = defaultPort
		}
		endpoint = fmt.Sprintf("http://localhost:%s/api/v1/readings", port)
	}

	mode := poller.ModeReplace
	if viper.GetString("poll.mode") == string(poller.ModeAppend) {
		mode = poller.ModeAppend
	}

	cfg := poller.Config{
		Interval:      time.Duration(viper.GetInt("poll.interval_ms")) * time.Millisecond,
		Mode:          mode,
		RetryAttempts: viper.GetInt("poll.retry_attempts"),
		RetryDelay:    time.Duration(viper.GetInt("poll.retry_delay_ms")) * time.Millisecond,
	}

	log.Infow("dashboard polling configured",
		"endpoint", endpoint,
		"interval", cfg.Interval,
		"mode", cfg.Mode,
		"retry_attempts", cfg.RetryAttempts,
	)
	return poller.New(poller.NewHTTPFetcher(endpoint, nil), state.NewStore(), cfg, nil)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = defaultPort
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, poll *poller.Service, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the poll loop and background goroutines
	poll.Stop()
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
