package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/levinine/browserconnector/exampleapp"
)

const shutdownTimeout = time.Second * 5

// newServeHandler routes /metrics to the Prometheus registry and everything else to the app,
// counting requests by status code and method.
func newServeHandler(app http.Handler, registry *prometheus.Registry) (http.Handler, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "browserconnector",
		Name:      "http_requests_total",
		Help:      "Number of HTTP requests served by the example application.",
	}, []string{"code", "method"})
	if err := registry.Register(requests); err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.PathPrefix("/").Handler(promhttp.InstrumentHandlerCounter(requests, app))
	return router, nil
}

func serve(params commandParams) error {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	app, err := exampleapp.New(exampleapp.Options{DisplayErrorDetails: true, Logger: logger})
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	handler, err := newServeHandler(app, registry)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              params.serveAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Serving %s at %s (uploads go to %s)\n", exampleapp.Name, params.serveAddr, app.UploadDir())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := app.CloseSessions(); err != nil {
		return err
	}
	logger.Printf("%d session(s) were closed", app.Sessions().Closed())
	return nil
}
