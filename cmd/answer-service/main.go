// cmd/answer-service/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartborrow/internal/agents"
	"smartborrow/internal/cache"
	"smartborrow/internal/clients/completion"
	"smartborrow/internal/clients/semanticindex"
	"smartborrow/internal/clients/websearch"
	"smartborrow/internal/common/config"
	"smartborrow/internal/common/database"
	"smartborrow/internal/common/logger"
	"smartborrow/internal/common/observability"
	"smartborrow/internal/common/validation"
	"smartborrow/internal/coordinator"
	"smartborrow/internal/evaluation"
	"smartborrow/internal/models"
	"smartborrow/internal/retrieval"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting answer service", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// Infrastructure clients, each with startup retries.
	var pg *database.PostgresClient
	if err := retryWithBackoff("postgres", 5, func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return pg.Ping(ctx)
	}, log); err != nil {
		log.Error("postgres unavailable", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer pg.Close()

	var es *database.ElasticsearchClient
	if err := retryWithBackoff("elasticsearch", 5, func() error {
		var err error
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return es.Ping()
	}, log); err != nil {
		log.Error("elasticsearch unavailable", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		log.Error("redis client init failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer redisClient.Close()

	// External collaborators.
	completer, err := completion.NewClient(&completion.Config{
		BaseURL:     cfg.Completion.BaseURL,
		Model:       cfg.Completion.Model,
		Token:       cfg.Completion.Token,
		MaxTokens:   cfg.Completion.MaxTokens,
		Temperature: cfg.Completion.Temperature,
	}, log)
	if err != nil {
		log.Error("completion client init failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	searchProvider := websearch.NewClient(&websearch.Config{
		BaseURL:      cfg.WebSearch.BaseURL,
		APIKey:       cfg.WebSearch.APIKey,
		EngineID:     cfg.WebSearch.EngineID,
		MaxResults:   cfg.WebSearch.MaxResults,
		MinRelevance: cfg.WebSearch.MinRelevance,
		Timeout:      cfg.WebSearch.Timeout(),
	}, log)

	semanticClient := semanticindex.NewClient(&semanticindex.Config{
		BaseURL:    cfg.Retrieval.SemanticBaseURL,
		Timeout:    cfg.Retrieval.SourceTimeout(),
		MaxRetries: 2,
	}, log)

	// Retrieval pipeline.
	retriever := retrieval.NewHybridRetriever(
		[]retrieval.Source{
			retrieval.NewSemanticSource(semanticClient, log),
			retrieval.NewKeywordSource(es, cfg.Database.Elasticsearch.Index, log),
			retrieval.NewMetadataSource(pg.DB, log),
		},
		retrieval.Options{
			TopK:          cfg.Retrieval.TopK,
			FetchK:        cfg.Retrieval.FetchK,
			ContextBudget: cfg.Retrieval.ContextBudget,
			Weights:       cfg.Retrieval.SourceWeights,
			MultiQuery:    cfg.Retrieval.MultiQuery,
			SourceTimeout: cfg.Retrieval.SourceTimeout(),
		},
		log,
	)

	// Agents.
	webCache := agents.NewWebCache(redisClient, cfg.Agents.WebCacheTTL(), log)
	specialists := map[models.AgentRoute]agents.Specialist{
		models.RouteLoanSpecialist:  agents.NewLoanSpecialist(retriever, completer, log),
		models.RouteGrantSpecialist: agents.NewGrantSpecialist(retriever, completer, log),
		models.RouteCalculator:      agents.NewCalculator(log),
		models.RouteResearcher:      agents.NewResearcher(searchProvider, webCache, completer, log),
	}
	fallback := agents.NewFallbackAgent(retriever, completer, cfg.Agents.FallbackConfidence, log)

	responseCache := cache.New(cfg.Cache.TTL(), cfg.Cache.Capacity, log)
	tracker := evaluation.NewPerformanceTracker(500)

	coord := coordinator.New(coordinator.Options{
		Specialists:  specialists,
		Fallback:     fallback,
		Cache:        responseCache,
		Evaluator:    evaluation.NewEvaluator(),
		Tracker:      tracker,
		Obs:          obs,
		AgentTimeout: cfg.Agents.Timeout(),
		Health: map[string]coordinator.HealthChecker{
			"postgres":      pg.Ping,
			"elasticsearch": func(ctx context.Context) error { return es.Info(ctx) },
			"redis":         redisClient.Ping,
		},
	}, log)

	// HTTP surface.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	overallTimeout := time.Duration(cfg.Server.OverallTimeout) * time.Millisecond
	mux.HandleFunc("/api/answer", answerHandler(coord, overallTimeout, log))
	mux.HandleFunc("/api/stats", statsHandler(coord))
	mux.HandleFunc("/health", healthHandler(coord))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"port": cfg.Server.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownGraceMs)*time.Millisecond)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", map[string]interface{}{"error": err.Error()})
	}
	log.Info("stopped", nil)
}

func answerHandler(coord *coordinator.Coordinator, overallTimeout time.Duration, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if err := validation.ValidateAnswerRequest(body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		question, _ := body["question"].(string)
		var history []models.Turn
		if rawHistory, ok := body["history"].([]interface{}); ok {
			for _, item := range rawHistory {
				turn, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				q, _ := turn["question"].(string)
				a, _ := turn["answer"].(string)
				history = append(history, models.Turn{Question: q, Answer: a})
			}
		}

		// Hard bound per request, on top of the per-call timeouts inside.
		ctx, cancel := context.WithTimeout(r.Context(), overallTimeout)
		defer cancel()

		answer := coord.Answer(ctx, question, history)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(answer); err != nil {
			log.Warn("response write failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func statsHandler(coord *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(coord.Metrics())
	}
}

func healthHandler(coord *coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := coord.Health(r.Context())

		status := http.StatusOK
		overall := "healthy"
		for _, s := range components {
			if s != "healthy" {
				status = http.StatusServiceUnavailable
				overall = "unhealthy"
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     overall,
			"components": components,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// retryWithBackoff retries an init step with exponential backoff. Startup
// dependencies often come up seconds after this service in orchestrated
// environments.
func retryWithBackoff(name string, attempts int, fn func() error, log logger.Logger) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		wait := time.Duration(1<<uint(i)) * time.Second
		log.Warn("init attempt failed, retrying", map[string]interface{}{
			"component": name,
			"attempt":   i + 1,
			"wait":      wait.String(),
			"error":     err.Error(),
		})
		time.Sleep(wait)
	}
	return err
}
