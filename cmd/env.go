package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/crunchy-cli/internal/config"
	"github.com/sells-group/crunchy-cli/internal/enrich"
	"github.com/sells-group/crunchy-cli/internal/store"
	"github.com/sells-group/crunchy-cli/internal/titlematch"
	anthropicpkg "github.com/sells-group/crunchy-cli/pkg/anthropic"
	"github.com/sells-group/crunchy-cli/pkg/apollo"
	"github.com/sells-group/crunchy-cli/pkg/gemini"
)

// enrichEnv holds the clients and catalogue needed by the run and serve
// commands.
type enrichEnv struct {
	Deps     enrich.Deps
	Segments config.Segments
	Store    store.Store // may be nil
}

// Close releases resources held by the environment.
func (e *enrichEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates the config for mode, builds the directory client and the
// title matcher, loads the segment catalogue and opens the results store when
// dbPath is set. Callers should defer env.Close().
func initEnv(ctx context.Context, mode, dbPath string) (*enrichEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	segments, err := config.LoadSegments(cfg.Run.SegmentsFile)
	if err != nil {
		return nil, err
	}

	matcher, err := newMatcher(ctx)
	if err != nil {
		return nil, err
	}

	dir := apollo.NewClient(cfg.Apollo.Key,
		apollo.WithBaseURL(cfg.Apollo.BaseURL),
		apollo.WithTimeout(time.Duration(cfg.Apollo.TimeoutSecs)*time.Second),
	)

	env := &enrichEnv{
		Deps:     enrich.Deps{Directory: dir, Matcher: matcher},
		Segments: segments,
	}

	if dbPath != "" {
		st, err := openStore(ctx, dbPath)
		if err != nil {
			return nil, err
		}
		env.Store = st
	}

	zap.L().Info("environment ready",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.Int("segments", len(segments)),
		zap.Bool("store", env.Store != nil),
	)
	return env, nil
}

// newMatcher builds the title matcher for the configured provider.
func newMatcher(ctx context.Context) (enrich.TitleMatcher, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.Gemini.Key, BaseURL: cfg.Gemini.BaseURL})
		if err != nil {
			return nil, eris.Wrap(err, "init gemini client")
		}
		return titlematch.NewGemini(client, cfg.Gemini.Model), nil
	default:
		// One HTTP request per counted LLM call.
		opts := []anthropicpkg.Option{anthropicpkg.WithMaxRetries(0)}
		if cfg.Anthropic.BaseURL != "" {
			opts = append(opts, anthropicpkg.WithBaseURL(cfg.Anthropic.BaseURL))
		}
		client := anthropicpkg.NewClient(cfg.Anthropic.Key, opts...)
		return titlematch.NewAnthropic(client, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens), nil
	}
}

// openStore opens and migrates the SQLite results database.
func openStore(ctx context.Context, path string) (store.Store, error) {
	st, err := store.NewSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
