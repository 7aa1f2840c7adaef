package service

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/log"
	"github.com/rs/cors"
)

// StatusFunc describes what the process is doing, eg. the runner state.
type StatusFunc func() string

type HealthzServer struct {
	ctx    context.Context
	server *http.Server
	status StatusFunc
	log    log.Logger
}

func NewHealthzServer(status StatusFunc, logger log.Logger) *HealthzServer {
	return &HealthzServer{status: status, log: logger}
}

// Handler returns the healthz routes.
func (h *HealthzServer) Handler() http.Handler {
	hdlr := http.NewServeMux()
	hdlr.HandleFunc("/healthz", h.Handle)
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	return c.Handler(hdlr)
}

func (h *HealthzServer) Start(ctx context.Context, addr string) error {
	return h.prepare(ctx, addr).ListenAndServe()
}

func (h *HealthzServer) prepare(ctx context.Context, addr string) *http.Server {
	h.server = &http.Server{
		Handler: h.Handler(),
		Addr:    addr,
	}
	h.ctx = ctx
	return h.server
}

func (h *HealthzServer) Shutdown() error {
	if h.server == nil {
		return nil
	}
	return h.server.Shutdown(h.ctx)
}

func (h *HealthzServer) Handle(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("Received health check request", "path", r.URL.Path)
	if h.status == nil {
		w.Write([]byte("OK")) //nolint:errcheck
		return
	}
	fmt.Fprintf(w, "OK %s", h.status()) //nolint:errcheck
}
