// Command trackadmin-mockapi serves an in-memory admin API for local
// development of the trackadmin client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/MrEthical07/trackAdmin/internal/logger"
	"github.com/MrEthical07/trackAdmin/mockapi"
	"github.com/MrEthical07/trackAdmin/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	var (
		addr      = flag.String("addr", "127.0.0.1:8080", "listen address")
		secret    = flag.String("secret", "", "HS256 signing secret; MOCKAPI_SECRET env or a dev default is used when empty")
		accessTTL = flag.Duration("access-ttl", 30*time.Minute, "access token lifetime")
		redisAddr = flag.String("redis", "", `refresh token store: "mini" for an embedded miniredis, an address for real redis, empty for memory`)
		admin     = flag.String("admin", "admin:admin", "seed operator as user:password")
		logLevel  = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	log, err := logger.New(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	if err := run(*addr, *secret, *accessTTL, *redisAddr, *admin, log); err != nil {
		log.Error("mockapi stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(addr, secret string, accessTTL time.Duration, redisAddr, admin string, log *zap.Logger) error {
	if secret == "" {
		secret = os.Getenv("MOCKAPI_SECRET")
	}
	if secret == "" {
		secret = "trackadmin-mockapi-dev-secret"
		log.Warn("using the development signing secret")
	}

	kv, cleanup, err := openRefreshStore(redisAddr, log)
	if err != nil {
		return err
	}
	defer cleanup()

	srv, err := mockapi.New(mockapi.Config{
		Secret:    []byte(secret),
		AccessTTL: accessTTL,
		KV:        kv,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	if admin != "" {
		user, pass, ok := strings.Cut(admin, ":")
		if !ok || user == "" || pass == "" {
			return fmt.Errorf("invalid -admin %q, want user:password", admin)
		}
		if err := srv.AddAccount(user, pass, "admin"); err != nil {
			return err
		}
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("mockapi listening", zap.String("addr", addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func openRefreshStore(addr string, log *zap.Logger) (storage.KV, func(), error) {
	switch addr {
	case "":
		return storage.NewMemory(), func() {}, nil
	case "mini":
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		log.Info("using miniredis", zap.String("addr", mr.Addr()))
		kv := storage.NewRedisKV(client, "mockapi")
		return kv, func() {
			_ = kv.Close()
			mr.Close()
		}, nil
	default:
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", addr, err)
		}
		log.Info("using redis", zap.String("addr", addr))
		kv := storage.NewRedisKV(client, "mockapi")
		return kv, func() { _ = kv.Close() }, nil
	}
}
