package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"script-designer/api/internal/cache"
	"script-designer/api/internal/config"
	"script-designer/api/internal/generator"
	"script-designer/api/internal/handle"
	"script-designer/api/internal/llm"
	"script-designer/api/internal/llm/gemini"
	"script-designer/api/internal/llm/gpt"
	"script-designer/api/internal/script"
	"script-designer/api/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func engines(c *config.Config) *llm.Engines {
	engs := &llm.Engines{Default: c.LLMProvider}
	if c.OpenAIAPIKey != "" {
		engs.OpenAI = gpt.New(c.OpenAIAPIKey, c.OpenAIModel)
	}
	if c.GroqAPIKey != "" {
		engs.Groq = gpt.NewGroq(c.GroqAPIKey, c.GroqModel)
	}
	if c.GeminiAPIKey != "" {
		engs.Gemini = gemini.New(c.GeminiAPIKey, c.GeminiModel)
	}
	return engs
}

func serve(ctx context.Context, c *config.Config, log *zap.Logger) error {
	norm := script.NewNormalizer(script.WithLogger(log.Named("normalizer")))

	genOpts := []generator.Option{generator.WithLogger(log.Named("generator"))}
	if c.RedisURL != "" {
		rdb, err := cache.Connect(ctx, c.RedisURL)
		if err != nil {
			// Generation works without the cache.
			log.Warn("redis unavailable; question cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			genOpts = append(genOpts, generator.WithCache(cache.NewQuestionCache(rdb, c.CacheTTL)))
		}
	}
	gen := generator.New(engines(c), norm, genOpts...)

	hOpts := []handle.Option{handle.WithLogger(log.Named("http")), handle.WithTimeout(c.RequestTimeout)}
	if c.DatabaseURL != "" {
		db, err := store.Open(ctx, c.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		hOpts = append(hOpts, handle.WithScripts(store.NewScriptRepo(db)))
	} else {
		log.Warn("DATABASE_URL is empty; script storage disabled")
	}

	h := handle.New(gen, norm, hOpts...)
	srv := &http.Server{
		Addr:              ":" + c.Port,
		Handler:           handle.NewRouter(h, log.Named("access")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("script-designer listening", zap.String("addr", srv.Addr), zap.String("llm_provider", c.LLMProvider))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
