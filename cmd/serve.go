package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/crunchy-cli/internal/enrich"
	"github.com/sells-group/crunchy-cli/internal/pipeline"
	"github.com/sells-group/crunchy-cli/internal/records"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for single-record enrichment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		env, err := initEnv(ctx, "serve", "")
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           newRouter(env, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// enrichRequest is the body of POST /v1/enrich. Record holds one input row
// keyed by column name.
type enrichRequest struct {
	Workflow string         `json:"workflow"`
	Segment  string         `json:"segment"`
	Record   map[string]any `json:"record"`
}

type enrichResponse struct {
	RunID   string            `json:"run_id"`
	Record  map[string]string `json:"record"`
	Summary pipeline.Summary  `json:"summary"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Stage string `json:"stage,omitempty"`
}

func newRouter(env *enrichEnv, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/enrich", enrichHandler(env))
		r.Get("/segments", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, segmentList(env.Segments))
		})
	})

	return r
}

func enrichHandler(env *enrichEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrichRequest
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if req.Segment == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "segment is required"})
			return
		}
		if len(req.Record) == 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "record is required"})
			return
		}

		seg, err := env.Segments.Lookup(req.Segment)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		name := req.Workflow
		if name == "" {
			name = seg.Workflow
		}
		if name == "" {
			name = enrich.WorkflowCrunchy
		}
		wf, err := enrich.Lookup(name)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		rec, err := wf.Input.Coerce(stringifyRow(req.Record))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		rc := pipeline.NewRunContext(pipeline.RunConfig{
			Segment:   seg.Name,
			Workflow:  wf.Name,
			Titles:    seg.Titles,
			Options:   seg.Options,
			TotalRows: 1,
		}, zap.L().With(zap.String("request_id", middleware.GetReqID(r.Context()))))

		out, err := wf.Pipeline(env.Deps).Run(r.Context(), rec, rc)
		if err != nil {
			status := http.StatusUnprocessableEntity
			if pipeline.IsKind(err, pipeline.KindInvalidPipeline) {
				status = http.StatusInternalServerError
			}
			resp := errorResponse{Error: err.Error(), Kind: string(pipeline.KindOf(err))}
			var se *pipeline.StageError
			if errors.As(err, &se) {
				resp.Stage = se.Stage
			}
			writeJSON(w, status, resp)
			return
		}

		writeJSON(w, http.StatusOK, enrichResponse{
			RunID:   rc.ID,
			Record:  records.Project(wf.Output, out),
			Summary: rc.Tracker.Snapshot(),
		})
	}
}

// stringifyRow renders decoded JSON values the way they would appear in an
// input sheet cell.
func stringifyRow(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		case bool:
			out[k] = fmt.Sprintf("%t", t)
		default:
			b, _ := json.Marshal(t)
			out[k] = string(b)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
