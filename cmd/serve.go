package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON resolution API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		mux := newServeMux(env, cfg.Sources.Default)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
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

// newServeMux builds the API routes. defaultSources is used when the
// request carries no sources parameter.
func newServeMux(env *env, defaultSources []string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /resolve/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		sources := defaultSources
		if q := r.URL.Query().Get("sources"); q != "" {
			sources = strings.Split(q, ",")
		}

		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("aggregate") == "false" {
			records, err := env.Engine.ResolveAll(r.Context(), id, sources)
			if err != nil {
				zap.L().Error("resolve failed", zap.String("identifier", id), zap.Error(err))
				http.Error(w, `{"error":"resolve failed"}`, http.StatusInternalServerError)
				return
			}
			if len(records) == 0 {
				http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(records)
			return
		}

		result, err := env.Engine.Resolve(r.Context(), id, sources)
		if err != nil {
			zap.L().Error("resolve failed", zap.String("identifier", id), zap.Error(err))
			http.Error(w, `{"error":"resolve failed"}`, http.StatusInternalServerError)
			return
		}
		if result == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(result)
	})

	mux.HandleFunc("GET /cache/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := env.Cache.Stats(r.Context())
		if err != nil {
			http.Error(w, `{"error":"stats failed"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	})

	return mux
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
