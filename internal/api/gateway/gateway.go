package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/ecuevas97/PartyPal/internal/api/http/middleware"
	"github.com/ecuevas97/PartyPal/internal/config"

	"github.com/rs/cors"
	"github.com/tmc/grpc-websocket-proxy/wsproxy"
)

// Wrap оборачивает mux цепочкой middleware backend-а.
// Порядок выполнения снаружи внутрь:
// 1. WebSocket Proxy (upgrade для /events/changes, самый внешний слой)
// 2. CORS (браузерный фронтенд живет на другом origin)
// 3. Recover
// 4. Logging
// 5. Rate Limiting
func Wrap(mux http.Handler, cfg *config.ConfigGateway, log *slog.Logger) http.Handler {
	var handler http.Handler = mux
	handler = middleware.RateLimit(log, handler, cfg.RateLimitRPS, cfg.RateLimitBurst)
	handler = middleware.Logging(log, handler)
	handler = middleware.Recover(log, handler)
	handler = setupCORS(cfg).Handler(handler)
	// WebSocket proxy должен быть последним (самым внешним), чтобы корректно обрабатывать upgrade
	return wsproxy.WebsocketProxy(handler)
}

// NewHTTPServer создает http.Server с таймаутами из конфига
func NewHTTPServer(port int, handler http.Handler, cfg *config.ConfigServer) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("0.0.0.0", strconv.Itoa(port)),
		Handler:           handler,
		ReadTimeout:       config.Seconds(cfg.HTTPReadTimeout),
		WriteTimeout:      config.Seconds(cfg.HTTPWriteTimeout),
		IdleTimeout:       config.Seconds(cfg.HTTPIdleTimeout),
		ReadHeaderTimeout: config.Seconds(cfg.HTTPReadHeaderTimeout),
	}
}

// Serve запускает сервер и останавливает его при отмене ctx.
// Возвращает nil после корректного graceful shutdown.
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout int, log *slog.Logger) error {
	errChan := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown", "timeout_seconds", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(shutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown timeout, forcing close", "error", err)
		_ = srv.Close()
		return err
	}

	log.Info("http server stopped gracefully")
	return nil
}

// setupCORS настраивает CORS middleware используя конфигурацию
func setupCORS(cfg *config.ConfigGateway) *cors.Cors {
	origins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	maxAge := cfg.CORSMaxAge
	if maxAge == 0 {
		maxAge = 86400 // 24 часа по умолчанию
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"X-Requested-With",
		},
		ExposedHeaders: []string{"Location"},
		MaxAge:         maxAge,
	})
}
