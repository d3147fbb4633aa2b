package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/annel0/footstep-fx/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServer отдаёт /metrics на отдельном порту, независимо от REST API
type HTTPServer struct {
	server *http.Server
}

// NewHTTPServer создаёт эндпоинт для gatherer (nil - дефолтный регистр)
func NewHTTPServer(addr string, gatherer prometheus.Gatherer) *HTTPServer {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &HTTPServer{server: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Handler возвращает обработчик, удобно для тестов
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start блокирует до остановки сервера
func (s *HTTPServer) Start() error {
	logging.Info("📈 Prometheus /metrics доступен по адресу %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает сервер; после Stop повторный Start сразу возвращает nil
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
