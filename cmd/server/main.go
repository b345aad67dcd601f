// Command server runs the clinicdesk chat backend.
//
// Configuration is loaded from a YAML file (-config flag, CLINICDESK_CONFIG,
// ./config.yaml or /etc/clinicdesk/config.yaml) with CLINICDESK_* environment
// overrides. Without any configuration the server starts with deterministic
// embeddings, canned replies and the built-in clinic information on :8000.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/rhuss/clinicdesk/pkg/agent"
	"github.com/rhuss/clinicdesk/pkg/api"
	"github.com/rhuss/clinicdesk/pkg/calendar"
	"github.com/rhuss/clinicdesk/pkg/config"
	"github.com/rhuss/clinicdesk/pkg/debug"
	"github.com/rhuss/clinicdesk/pkg/embedding"
	"github.com/rhuss/clinicdesk/pkg/faq"
	transporthttp "github.com/rhuss/clinicdesk/pkg/transport/http"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)
	logger := slog.Default()

	provider, err := embedding.New(embedding.Config{
		Provider:   cfg.Embedding.Provider,
		URL:        cfg.Embedding.URL,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    cfg.Embedding.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating embedding provider: %w", err)
	}

	var source faq.Source = faq.DefaultSource()
	if cfg.FAQ.DataPath != "" {
		source = faq.FileSource{Path: cfg.FAQ.DataPath}
	}

	index := faq.NewIndex(provider, source, logger)
	loadCtx, cancel := context.WithTimeout(context.Background(), cfg.FAQ.LoadTimeout)
	err = index.Load(loadCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("loading FAQ index: %w", err)
	}

	cal := calendar.NewSeeded(cfg.Calendar.Seed, logger)
	var booker calendar.Booker = cal
	if cfg.Calendar.BaseURL != "" {
		booker = calendar.NewClient(cfg.Calendar.BaseURL, 0)
		logger.Info("booking through remote calendar", "base_url", cfg.Calendar.BaseURL)
	}

	responder := agent.NewResponder(agent.ResponderConfig{
		Mock:       cfg.LLM.Mock,
		BackendURL: cfg.LLM.BackendURL,
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		MaxTokens:  cfg.LLM.MaxTokens,
		Timeout:    cfg.LLM.Timeout,
	}, logger)

	chat := agent.New(faq.NewService(index, cfg.FAQ.TopK, logger), booker, responder, logger)

	adapterCfg := transporthttp.Config{
		MaxBodySize: cfg.Server.MaxBodySize,
		Validation:  api.DefaultValidationConfig(),
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	}
	if cfg.Observability.Metrics.Enabled {
		adapterCfg.MetricsPath = cfg.Observability.Metrics.Path
	}
	adapter := transporthttp.NewAdapter(chat, cal, index.Loaded, adapterCfg)

	srv := transporthttp.NewServer(adapter,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithReadTimeout(cfg.Server.ReadTimeout),
		transporthttp.WithWriteTimeout(cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(logger),
	)

	logger.Info("clinicdesk starting",
		"port", cfg.Server.Port,
		"embedding", provider.Name(),
		"faq_documents", index.Len(),
		"llm_mock", cfg.LLM.Mock)

	return srv.ListenAndServe()
}
