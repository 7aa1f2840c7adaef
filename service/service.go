package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/ethereum-optimism/infra/op-unit/metrics"
)

const (
	HealthzHost = "0.0.0.0"
	HealthzPort = 8080
)

// Config selects which servers run while tests execute.
type Config struct {
	HealthzEnabled bool
	HealthzAddr    string // Defaults to HealthzHost:HealthzPort
	MetricsEnabled bool
	MetricsAddr    string
	Status         StatusFunc
	Log            log.Logger
}

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer

	cfg Config
	wg  sync.WaitGroup
}

func New(cfg Config) *Service {
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	if cfg.HealthzAddr == "" {
		cfg.HealthzAddr = net.JoinHostPort(HealthzHost, strconv.Itoa(HealthzPort))
	}
	return &Service{
		Healthz: NewHealthzServer(cfg.Status, cfg.Log),
		Metrics: &MetricsServer{},
		cfg:     cfg,
	}
}

func (s *Service) Start(ctx context.Context) {
	logger := s.cfg.Log
	logger.Info("service starting")

	if s.cfg.HealthzEnabled {
		s.serve(s.Healthz.prepare(ctx, s.cfg.HealthzAddr), "healthz")
	}
	if s.cfg.MetricsEnabled {
		s.serve(s.Metrics.prepare(ctx, s.cfg.MetricsAddr), "metrics")
	}

	logger.Info("service started")
}

func (s *Service) serve(server *http.Server, name string) {
	logger := s.cfg.Log
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		logger.Info("starting "+name+" server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("error starting "+name+" server", "err", err)
			metrics.RecordErrorDetails("error starting "+name+" server", err)
		}
	}()
}

func (s *Service) Shutdown() {
	logger := s.cfg.Log
	logger.Info("service shutting down")

	_ = s.Healthz.Shutdown()
	logger.Info("healthz stopped")

	_ = s.Metrics.Shutdown()
	logger.Info("metrics stopped")

	s.wg.Wait()

	logger.Info("service stopped")
}
