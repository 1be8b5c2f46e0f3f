package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/high-focus/sourcing-cli/internal/analyze"
	"github.com/high-focus/sourcing-cli/internal/engine"
	"github.com/high-focus/sourcing-cli/internal/model"
	"github.com/high-focus/sourcing-cli/internal/store"
)

var (
	servePort    int
	serveOffline bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload server for sourcing analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		th, err := loadThresholds()
		if err != nil {
			return err
		}

		client, err := initPricingClient(serveOffline)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		srv := &uploadServer{
			analyzer:  analyze.New(engine.New(th), client, cfg.Analyze.Concurrency),
			th:        th,
			store:     st,
			maxUpload: cfg.Server.MaxUploadMiB << 20,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.routes(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

type uploadServer struct {
	analyzer  *analyze.Analyzer
	th        engine.Thresholds
	store     store.Store
	maxUpload int64
}

func (s *uploadServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/v1/parse", s.handleParse)
	r.Post("/v1/analyze", s.handleAnalyze)
	r.Get("/v1/runs", s.handleListRuns)
	r.Get("/v1/runs/{id}", s.handleGetRun)

	return r
}

// handleParse extracts normalized rows from the uploaded spreadsheet without
// pricing them.
func (s *uploadServer) handleParse(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	result, err := analyze.ParseFile(data, s.th)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeResponse(w, http.StatusOK, result)
}

// handleAnalyze runs the full pipeline on the uploaded spreadsheet and
// records the run.
func (s *uploadServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	data, upload, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	run, err := s.store.CreateRun(r.Context(), upload)
	if err != nil {
		zap.L().Error("serve: create run", zap.Error(err))
		writeResponse(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), data, upload)
	if err != nil {
		_ = s.store.UpdateRunStatus(r.Context(), run.ID, model.RunStatusFailed)
		writeEngineError(w, err)
		return
	}

	if err := s.store.UpdateRunResult(r.Context(), run.ID, result); err != nil {
		zap.L().Error("serve: update run result", zap.Error(err))
	}

	writeResponse(w, http.StatusOK, map[string]any{
		"run_id": run.ID,
		"result": result,
	})
}

func (s *uploadServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.store.ListRuns(r.Context(), store.RunFilter{
		Status: model.RunStatus(r.URL.Query().Get("status")),
		Limit:  limit,
	})
	if err != nil {
		zap.L().Error("serve: list runs", zap.Error(err))
		writeResponse(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeResponse(w, http.StatusOK, runs)
}

func (s *uploadServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeResponse(w, http.StatusNotFound, errorBody("run not found"))
		return
	}
	writeResponse(w, http.StatusOK, run)
}

// readUpload pulls the spreadsheet and auxiliary fields out of the multipart
// form. It writes the error response itself and reports ok=false on failure.
func (s *uploadServer) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, model.Upload, bool) {
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeResponse(w, http.StatusBadRequest, errorBody("invalid multipart form"))
		return nil, model.Upload{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeResponse(w, http.StatusBadRequest, errorBody("file field is required"))
		return nil, model.Upload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUpload))
	if err != nil {
		writeResponse(w, http.StatusBadRequest, errorBody("could not read upload"))
		return nil, model.Upload{}, false
	}

	volume, _ := strconv.Atoi(r.FormValue("volume"))
	upload := model.Upload{
		Filename:    header.Filename,
		Fulfillment: model.ParseFulfillment(r.FormValue("fulfillment")),
		UnitVolume:  volume,
	}
	return data, upload, true
}

// writeEngineError maps engine failures onto response classes: empty
// workbooks are bad requests, classification failures are correctable input,
// everything else is internal.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case eris.Is(err, engine.ErrEmptyWorkbook):
		writeResponse(w, http.StatusBadRequest, errorBody(err.Error()))
	case engine.IsClassificationErr(err):
		writeResponse(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		zap.L().Error("serve: analysis failed", zap.Error(err))
		writeResponse(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "use the stub pricing client (no API calls)")
	rootCmd.AddCommand(serveCmd)
}
