package main

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	openai "github.com/sashabaranov/go-openai"

	"triage-assistant/internal/config"
	"triage-assistant/internal/httpapi"
	"triage-assistant/internal/nlu"
	"triage-assistant/internal/observability"
	"triage-assistant/internal/policy"
	"triage-assistant/internal/retrieval"
	"triage-assistant/internal/safety"
	"triage-assistant/internal/session"
	"triage-assistant/internal/triage"
)

func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Retrieval is optional: without an API key there is no embedder, so
	// the pipeline degrades to empty retrieval results.
	var searcher *retrieval.Searcher
	var oaClient *openai.Client
	if cfg.OpenAIKey != "" {
		oaClient = openai.NewClient(cfg.OpenAIKey)
		embedder := retrieval.NewOpenAIEmbedder(oaClient, cfg.EmbedModel)

		var store retrieval.Store
		if cfg.DatabaseURL != "" {
			pg, err := retrieval.OpenPostgres(context.Background(), cfg.DatabaseURL, embedder)
			if err != nil {
				log.Fatalf("failed to open postgres index: %v", err)
			}
			defer pg.Close()
			store = pg
		} else {
			lite, err := retrieval.OpenSQLite(context.Background(), cfg.IndexPath, embedder)
			if err != nil {
				log.Fatalf("failed to open sqlite index: %v", err)
			}
			defer lite.Close()
			store = lite
		}
		searcher = retrieval.NewSearcher(store, embedder, retrieval.DefaultLambda)
	}

	// Self-check: rule tier always; external tier only when enabled and a
	// credential is present.
	var primary safety.Reviewer
	if cfg.SafetyLLM && oaClient != nil {
		primary = safety.NewLLMReviewer(oaClient, cfg.SafetyModel, cfg.SafetyTimeout)
	}
	reviewer := safety.NewHybrid(primary, safety.NewRuleReviewer(), logger)

	engine := triage.NewEngine(
		session.NewStore(cfg.SessionTTL),
		nlu.NewExtractor(nlu.NewLexiconTagger(), logger),
		policy.NewEngine(),
		searcher,
		reviewer,
		logger,
		metrics,
	)

	srv := httpapi.NewServer(engine, logger, registry)
	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
