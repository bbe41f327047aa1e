package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalforge/datamart/internal/catalog"
	"github.com/signalforge/datamart/internal/model"
	"github.com/signalforge/datamart/internal/table"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the catalog and download server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline()
		if err != nil {
			return err
		}

		if cfg.Server.UpdateOnStart {
			go func() {
				zap.L().Info("triggering startup data pipeline")
				run := runPipeline(ctx, env, time.Now().UTC())
				zap.L().Info("startup pipeline completed",
					zap.String("status", string(run.Status)),
					zap.Int64("added_bytes", run.TotalAddedBytes),
				)
			}()
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the HTTP API over an initialized pipeline environment.
func newRouter(env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/catalog", func(w http.ResponseWriter, _ *http.Request) {
		entries, err := env.Builder.Build()
		if err != nil {
			zap.L().Error("catalog build failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "catalog unavailable"})
			return
		}

		systemStatus := map[string]any{"last_update": "Never", "data_added": "0 KB"}
		if status, err := env.Ledger.Read(); err == nil {
			systemStatus = map[string]any{
				"last_update":           status.LastUpdate,
				"status":                status.StatusLine,
				"total_data_size_bytes": status.TotalDataSizeBytes,
				"total_added_bytes":     status.TotalAddedBytes,
				"data_added":            catalog.HumanSize(status.TotalAddedBytes),
			}
		}

		verticals := make(map[string][]map[string]any)
		for name, group := range env.Builder.Grouped(entries) {
			verticals[name] = make([]map[string]any, 0, len(group))
			for _, e := range group {
				verticals[name] = append(verticals[name], apiEntry(e))
			}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"system_status": systemStatus,
			"verticals":     verticals,
		})
	})

	r.Get("/api/preview/{vertical}", func(w http.ResponseWriter, req *http.Request) {
		slug := chi.URLParam(req, "vertical")
		v, err := env.Registry.Get(slug)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Vertical not found"})
			return
		}
		if !env.Store.Exists(v.BaseFilename()) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Data not generated yet"})
			return
		}

		t, err := env.Store.Load(req.Context(), v.BaseFilename())
		if err != nil {
			zap.L().Error("preview load failed", zap.String("vertical", slug), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "preview unavailable"})
			return
		}

		history := tailRecords(t, 30)
		var latest map[string]string
		if len(history) > 0 {
			latest = history[len(history)-1]
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"vertical":   slug,
			"latest":     latest,
			"history":    history,
			"total_rows": t.Len(),
		})
	})

	r.Get("/api/files/{vertical}", func(w http.ResponseWriter, req *http.Request) {
		slug := chi.URLParam(req, "vertical")
		if _, err := env.Registry.Get(slug); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Vertical not found"})
			return
		}

		entries, err := env.Builder.Build()
		if err != nil {
			zap.L().Error("catalog build failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "catalog unavailable"})
			return
		}

		files := make([]map[string]any, 0)
		for _, e := range entries {
			if e.Vertical != slug {
				continue
			}
			files = append(files, apiEntry(e))
		}
		writeJSON(w, http.StatusOK, map[string]any{"files": files})
	})

	r.Get("/download/{filename}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "filename")
		path, err := catalog.Resolve(env.Store.Dir(), name)
		if err != nil {
			if eris.Is(err, catalog.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid filename"})
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
		http.ServeFile(w, req, path)
	})

	return r
}

// apiEntry renders a catalog entry the way the frontend expects it.
func apiEntry(e model.CatalogEntry) map[string]any {
	return map[string]any{
		"filename":     e.Filename,
		"type":         strings.ToUpper(string(e.Tier)),
		"period":       e.Period,
		"rows":         e.Rows,
		"size":         catalog.HumanSize(e.SizeBytes),
		"price":        e.Price,
		"description":  e.Description,
		"download_url": e.DownloadURL,
	}
}

// tailRecords converts the last n rows to column-keyed records.
func tailRecords(t *table.Table, n int) []map[string]string {
	start := t.Len() - n
	if start < 0 {
		start = 0
	}
	out := make([]map[string]string, 0, t.Len()-start)
	for _, r := range t.Rows[start:] {
		rec := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(r) {
				rec[col] = r[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
