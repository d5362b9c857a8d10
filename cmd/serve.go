package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/internal/model"
	"github.com/sells-group/estate-leads/internal/store"
)

var servePort int

// batchRunner processes a batch for an already-recorded run.
type batchRunner interface {
	Resume(ctx context.Context, runID string, batch model.Batch) (*model.RunReport, error)
}

type acceptedResponse struct {
	Status string `json:"status"`
	RunID  string `json:"run_id"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the batch intake server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initProcess(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		// Registered after env.Close so in-flight runs finish writing to
		// the ledger before it closes.
		var inflight sync.WaitGroup
		defer inflight.Wait()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(ctx, env.Store, env.Pipeline, &inflight, cfg.Server.CORSOrigins),
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

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// buildRouter wires the HTTP routes. Accepted batches are processed in the
// background under ctx and tracked on inflight, so shutting the server down
// fails in-flight runs and callers can wait for them to record it.
func buildRouter(ctx context.Context, st store.Store, runner batchRunner, inflight *sync.WaitGroup, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/batches", func(w http.ResponseWriter, req *http.Request) {
			batch, err := readBatch(req.Body)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid batch body")
				return
			}

			run, err := st.CreateRun(req.Context(), batch.NumberOfNamesExtracted)
			if err != nil {
				zap.L().Error("serve: create run failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "could not record run")
				return
			}

			inflight.Add(1)
			go func() {
				defer inflight.Done()
				if runner == nil {
					return
				}
				report, err := runner.Resume(ctx, run.ID, *batch)
				if err != nil {
					zap.L().Error("serve: batch processing failed", zap.String("run_id", run.ID), zap.Error(err))
					return
				}
				zap.L().Info("serve: batch processed",
					zap.String("run_id", run.ID),
					zap.Int("deals_created", report.Counters.DealsCreated),
				)
			}()

			writeJSON(w, http.StatusAccepted, acceptedResponse{Status: "accepted", RunID: run.ID})
		})

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			filter, err := runFilterFromQuery(req)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			runs, err := st.ListRuns(req.Context(), filter)
			if err != nil {
				zap.L().Error("serve: list runs failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "could not list runs")
				return
			}
			if runs == nil {
				runs = []model.Run{}
			}
			writeJSON(w, http.StatusOK, runs)
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, run)
		})

		r.Get("/runs/{id}/leads", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			if _, err := st.GetRun(req.Context(), id); err != nil {
				writeStoreError(w, err)
				return
			}
			leads, err := st.ListLeads(req.Context(), id)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, leads)
		})
	})

	return r
}

func runFilterFromQuery(req *http.Request) (store.RunFilter, error) {
	q := req.URL.Query()
	filter := store.RunFilter{Status: model.RunStatus(q.Get("status"))}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return store.RunFilter{}, eris.Errorf("%s must be a non-negative integer", name)
		}
		*dst = n
	}
	return filter, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	zap.L().Error("serve: store lookup failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "store lookup failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
