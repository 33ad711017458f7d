package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medical-qa-service/internal/config"
	"medical-qa-service/internal/core"
	httpserver "medical-qa-service/internal/http"
	"medical-qa-service/internal/llm"
)

func main() {
	// Load configuration: defaults, optional YAML file, env overrides.
	// A missing credential or malformed field is fatal here, never at
	// request time.
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	client := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens)
	pipeline := core.NewPipeline(client, cfg.Drafting(), cfg.Canned())
	srv := httpserver.NewServer(pipeline, cfg.MaxWorkers)

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv,
	}

	go func() {
		log.Printf("Listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
