package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caixinha/caixinha-server/internal/api/handlers"
	"github.com/caixinha/caixinha-server/internal/api/middleware"
	"github.com/caixinha/caixinha-server/internal/archive"
	"github.com/caixinha/caixinha-server/internal/config"
	"github.com/caixinha/caixinha-server/internal/extract"
	"github.com/caixinha/caixinha-server/internal/jobs/inmemory"
	"github.com/caixinha/caixinha-server/internal/logger"
	"github.com/caixinha/caixinha-server/internal/opssync"
	"github.com/caixinha/caixinha-server/internal/report"
	"github.com/caixinha/caixinha-server/internal/statement"
	"github.com/caixinha/caixinha-server/internal/store/postgres"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer pool.Close()
	repo := postgres.NewRepository(pool)

	modelClient, err := buildModelClient(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create extraction client")
	}
	extractor := extract.New(modelClient)

	var arch handlers.StatementArchive
	if cfg.GCSBucket != "" {
		store, err := archive.New(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create archive client")
		}
		defer store.Close()
		arch = store
	} else {
		log.Warn().Msg("No GCS bucket configured - statement archiving and async imports are disabled")
	}

	var opsReader opssync.SheetReader
	if cfg.SheetID != "" {
		opsReader, err = opssync.NewGoogleSheets(ctx, cfg.SheetAPIKey, cfg.SheetID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create sheets client")
		}
	} else {
		log.Warn().Msg("No spreadsheet configured - operations sync is disabled")
		opsReader = unconfiguredSheet{}
	}
	ops := opssync.New(opsReader, cfg.OpsCachePath)

	// Job infrastructure for async statement imports.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	staging := handlers.NewStaging()
	csvParser := &statement.CSVParser{Placeholder: report.PlaceholderReceipt}
	pdfParser := &statement.PDFParser{Model: modelClient, Placeholder: report.PlaceholderReceipt}

	importsHandler := handlers.NewImportsHandler(repo, staging, jobQueue, jobStore, arch, csvParser, pdfParser, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	go func() {
		log.Info().Msg("Starting import job worker")
		if err := jobQueue.Start(workerCtx, importsHandler.ProcessJob); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	transactionsHandler := handlers.NewTransactionsHandler(repo, log)
	receiptsHandler := handlers.NewReceiptsHandler(extractor, cfg.MaxImageDimension, log)
	exportsHandler := handlers.NewExportsHandler(repo, arch, log)
	operationsHandler := handlers.NewOperationsHandler(ops, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := buildRouter(transactionsHandler, importsHandler, receiptsHandler, exportsHandler, operationsHandler, jobsHandler)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

func buildModelClient(ctx context.Context, cfg *config.Config) (extract.Client, error) {
	if cfg.ExtractProvider == "openai" {
		return extract.NewOpenAICompatible(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	}
	return extract.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
}

// unconfiguredSheet stands in when no spreadsheet is configured; manual
// operation additions and the cache keep working.
type unconfiguredSheet struct{}

func (unconfiguredSheet) ReadOperationsColumn(context.Context, string) ([]string, error) {
	return nil, opssync.ErrNoOperations
}

func buildRouter(
	transactions *handlers.TransactionsHandler,
	imports *handlers.ImportsHandler,
	receipts *handlers.ReceiptsHandler,
	exports *handlers.ExportsHandler,
	operations *handlers.OperationsHandler,
	jobsH *handlers.JobsHandler,
) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			transactions.ListTransactions(w, r)
		case http.MethodPost:
			transactions.CreateTransaction(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		switch r.Method {
		case http.MethodGet:
			transactions.GetTransaction(w, r, id)
		case http.MethodPut:
			transactions.UpdateTransaction(w, r, id)
		case http.MethodPatch:
			transactions.PatchTransaction(w, r, id)
		case http.MethodDelete:
			transactions.DeleteTransaction(w, r, id)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/imports", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			imports.CreateImport(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/imports/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/imports/")
		batchID, action, _ := strings.Cut(rest, "/")
		if batchID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Batch ID is required")
			return
		}
		switch {
		case r.Method == http.MethodGet && action == "":
			imports.GetBatch(w, r, batchID)
		case r.Method == http.MethodPost && action == "confirm":
			imports.ConfirmBatch(w, r, batchID)
		case r.Method == http.MethodDelete && action == "":
			imports.DiscardBatch(w, r, batchID)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/receipts/extract", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			receipts.ExtractReceipt(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/exports/xlsx", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			exports.ExportExcel(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/exports/receipts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			exports.ExportReceipts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/operations", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			operations.ListOperations(w, r)
		case http.MethodPost:
			operations.AddOperations(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/operations/sync", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			operations.SyncOperations(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsH.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsH.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}
