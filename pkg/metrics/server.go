package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthFunc 返回当前健康状态（在 HTTP goroutine 中调用，实现方需自行保证并发安全）
type HealthFunc func() map[string]any

// NewRouter 创建调试路由：/metrics 和 /health
func NewRouter(rec *Recorder, health HealthFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(rec.Registry(), promhttp.HandlerOpts{}))
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		body := map[string]any{"status": "ok"}
		if health != nil {
			for k, v := range health() {
				body[k] = v
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Printf("[Metrics] Failed to encode health: %v", err)
		}
	})
	return r
}

// Serve 在 addr 上运行调试服务，直到 ctx 结束
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Metrics] Debug server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
