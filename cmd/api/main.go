// Entry point for REST API
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"employee.registry/internal/api"
	"employee.registry/internal/config"
	"employee.registry/internal/core"
	"employee.registry/internal/ports/blob"
	"employee.registry/internal/ports/messaging"
	"employee.registry/internal/ports/repository"
	"employee.registry/pkg/aws"
	"employee.registry/pkg/database"
	"employee.registry/pkg/logger"
	"employee.registry/pkg/telemetry"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "employee-registry"

type stores struct {
	employees  repository.DocumentStore
	attendance repository.DocumentStore
	close      func()
}

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup(cfg.IsLocalDev)

	// Configure OpenTelemetry Tracing
	shutdownTracer, err := telemetry.InitTracer(serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	ctx := context.Background()

	docs, err := newDocumentStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.DocumentStore).Msg("Error opening document store")
	}
	defer docs.close()
	log.Info().Str("store", cfg.DocumentStore).Msg("Successfully connected to the document store.")

	// AWS SDK Config, only needed when S3 or SQS is in use
	var awsCfg awssdk.Config
	if cfg.BlobStore == config.BlobStoreS3 || cfg.EmployeeEventsQueueURL != "" {
		awsCfg, err = aws.NewAWSConfig(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("unable to load SDK config")
		}
	}

	blobs, err := newBlobStore(awsCfg, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating blob store")
	}

	var publisher messaging.EventPublisher = messaging.NoopPublisher{}
	if cfg.EmployeeEventsQueueURL != "" {
		publisher = messaging.NewSQSProducer(aws.NewSQSClient(awsCfg), cfg.EmployeeEventsQueueURL)
	} else {
		log.Info().Msg("EMPLOYEE_EVENTS_QUEUE_URL not set, employee events are not published")
	}

	// Initialize dependencies
	employeeService := core.NewEmployeeService(docs.employees, core.NewImageStore(blobs), publisher)
	attendanceService := core.NewAttendanceService(docs.attendance)

	// Setup router and server
	router := api.NewRouter(employeeService, attendanceService)

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	handler := otelhttp.NewHandler(logger.Middleware(router), "api")

	serverAddr := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("API Service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// The server has 5 seconds to finish the requests it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

// newDocumentStores opens the employee and attendance containers on the
// configured backend.
func newDocumentStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.DocumentStore {
	case config.DocumentStorePostgres:
		db, err := database.NewInstrumentedConnection(ctx, cfg)
		if err != nil {
			return nil, err
		}
		employees := repository.NewPostgresStore(db, cfg.EmployeeContainerName)
		attendance := repository.NewPostgresStore(db, cfg.AttendanceContainerName)
		for _, s := range []*repository.PostgresStore{employees, attendance} {
			if err := s.EnsureTable(ctx); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &stores{
			employees:  employees,
			attendance: attendance,
			close:      func() { db.Close() },
		}, nil

	case config.DocumentStoreMongo:
		db, err := database.NewMongoDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &stores{
			employees:  repository.NewMongoStore(db, cfg.EmployeeContainerName),
			attendance: repository.NewMongoStore(db, cfg.AttendanceContainerName),
			close: func() {
				if err := db.Client().Disconnect(context.Background()); err != nil {
					log.Warn().Err(err).Msg("Error disconnecting from mongo")
				}
			},
		}, nil

	case config.DocumentStoreMemory:
		log.Warn().Msg("Using in-memory document store, data is lost on restart")
		return &stores{
			employees:  repository.NewMemoryStore(),
			attendance: repository.NewMemoryStore(),
			close:      func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown DOCUMENT_STORE %q", cfg.DocumentStore)
}

func newBlobStore(awsCfg awssdk.Config, cfg config.Config) (blob.Store, error) {
	switch cfg.BlobStore {
	case config.BlobStoreS3:
		client := aws.NewS3Client(awsCfg, cfg)
		return blob.NewS3Store(client, cfg.StorageContainerName, cfg.AWSRegion, cfg.BlobPublicBaseURL), nil
	case config.BlobStoreMemory:
		log.Warn().Msg("Using in-memory blob store, images are lost on restart")
		return blob.NewMemoryStore(cfg.BlobPublicBaseURL), nil
	}
	return nil, fmt.Errorf("unknown BLOB_STORE %q", cfg.BlobStore)
}
