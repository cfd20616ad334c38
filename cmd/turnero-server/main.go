package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"turnero/internal/classifier"
	"turnero/internal/config"
	"turnero/internal/db"
	"turnero/internal/dialog"
	"turnero/internal/domain"
	"turnero/internal/events"
	"turnero/internal/extract"
	"turnero/internal/fusion"
	"turnero/internal/fuzzy"
	"turnero/internal/orchestrator"
	"turnero/internal/pattern"
	"turnero/internal/session"
)

func main() {
	_ = godotenv.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := db.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Error("connect db failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Error("migrate db failed", "error", err)
		os.Exit(1)
	}

	sessions, err := newSessionStore(cfg)
	if err != nil {
		logger.Error("init session store failed", "error", err)
		os.Exit(1)
	}
	defer sessions.Close()

	table := fuzzy.DefaultTable()
	if cfg.KeywordTablePath != "" {
		if loaded, err := fuzzy.LoadTable(cfg.KeywordTablePath); err != nil {
			logger.Warn("load keyword table failed, using built-in", "path", cfg.KeywordTablePath, "error", err)
		} else {
			table = loaded
		}
	}
	fuzzyEngine := fuzzy.NewEngine(table, logger)
	if cfg.KeywordTablePath != "" {
		go func() {
			if err := fuzzyEngine.Watch(ctx, cfg.KeywordTablePath); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("keyword table watcher stopped", "error", err)
			}
		}()
	}

	var publisher *events.Publisher
	if cfg.MQTTBrokerURL != "" {
		publisher = events.NewPublisher(events.Config{
			BrokerURL:   cfg.MQTTBrokerURL,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			TopicPrefix: cfg.MQTTTopicPrefix,
		}, logger)
		if err := publisher.Start(ctx); err != nil {
			logger.Error("start mqtt publisher failed", "error", err)
			os.Exit(1)
		}
	}

	external := classifier.NewClient(cfg.ClassifierBaseURL, cfg.ClassifierModel, cfg.ClassifierAPIKey, cfg.ClassifierTimeout)
	machine := dialog.NewMachine(store, nil, logger)

	orch := orchestrator.New(orchestrator.Deps{
		Pattern:         pattern.New(),
		Fuzzy:           fuzzyEngine,
		Fusion:          fusion.New(fusion.DefaultThresholds()),
		External:        external,
		Extractor:       extract.New(nil),
		Machine:         machine,
		Sessions:        sessions,
		Booker:          store,
		MsgLog:          store,
		Publisher:       publisher,
		ExternalTimeout: cfg.ClassifierTimeout,
	}, logger)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Post("/v1/chat", func(w http.ResponseWriter, req *http.Request) {
		var turnReq domain.TurnRequest
		if err := json.NewDecoder(req.Body).Decode(&turnReq); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}
		if turnReq.ConversationID == "" || turnReq.Message == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "conversation_id and message are required"})
			return
		}
		resp, err := orch.HandleTurn(req.Context(), turnReq)
		if err != nil {
			logger.Error("turn failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Post("/v1/conversations/reset", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			ConversationID string `json:"conversation_id"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.ConversationID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "conversation_id is required"})
			return
		}
		if err := orch.Reset(req.Context(), body.ConversationID); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Get("/v1/availability", func(w http.ResponseWriter, req *http.Request) {
		date := req.URL.Query().Get("date")
		if date == "" {
			date = extract.NextBusinessDay(time.Now().AddDate(0, 0, 1)).Format("2006-01-02")
		}
		slots, err := store.AvailableSlots(req.Context(), date)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"date": date, "slots": slots})
	})

	r.Get("/v1/dashboard/intents", func(w http.ResponseWriter, req *http.Request) {
		since := time.Now().AddDate(0, 0, -7)
		dist, err := store.IntentDistribution(req.Context(), since)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"since": since, "intents": dist})
	})

	r.Get("/v1/dashboard/confidence", func(w http.ResponseWriter, req *http.Request) {
		since := time.Now().AddDate(0, 0, -7)
		stats, err := store.ConfidenceStats(req.Context(), since)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"since": since, "sources": stats})
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("turnero server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}

func newSessionStore(cfg config.ServerConfig) (session.Store, error) {
	if cfg.SessionDriver == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return session.NewRedisStore(client, cfg.SessionTTL), nil
	}
	return session.NewMemoryStore(), nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
