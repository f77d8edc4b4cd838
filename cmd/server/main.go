package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/leitorclaro/boleto-pipeline/internal/auth"
	"github.com/leitorclaro/boleto-pipeline/internal/config"
	"github.com/leitorclaro/boleto-pipeline/internal/db"
	"github.com/leitorclaro/boleto-pipeline/internal/extract"
	"github.com/leitorclaro/boleto-pipeline/internal/httpapi"
	"github.com/leitorclaro/boleto-pipeline/internal/logging"
	"github.com/leitorclaro/boleto-pipeline/internal/pipeline"
	"github.com/leitorclaro/boleto-pipeline/internal/soap"
	"github.com/leitorclaro/boleto-pipeline/internal/storage"
	"github.com/leitorclaro/boleto-pipeline/internal/suppliers"
	"github.com/leitorclaro/boleto-pipeline/internal/workerpool"
	"go.uber.org/zap"
)

func main() {
	log, err := logging.New(false)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	issuer, err := auth.NewIssuer(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)
	if err != nil {
		log.Fatal("failed to initialize auth", zap.Error(err))
	}
	log.Info("bearer token auth initialized")

	ctx := context.Background()

	var subs *db.SubmissionStore
	if cfg.Database.DSN != "" {
		pool, err := db.NewPool(ctx, cfg.Database.DSN)
		if err != nil {
			log.Warn("database not available, running without submission audit log", zap.Error(err))
		} else {
			defer pool.Close()
			subs = db.NewSubmissionStore(pool)
			log.Info("database connection pool initialized")
		}
	}

	var archive *storage.Archive
	if cfg.Storage.Endpoint != "" {
		archive, err = storage.New(ctx, cfg.Storage)
		if err != nil {
			log.Warn("object storage not available, original PDFs will not be archived", zap.Error(err))
			archive = nil
		} else {
			log.Info("PDF archival storage initialized")
		}
	}

	var supplierDir *suppliers.Directory
	if cfg.Suppliers.CSVPath != "" {
		supplierDir, err = suppliers.Load(cfg.Suppliers.CSVPath)
		if err != nil {
			log.Warn("supplier CNPJ mapping not available", zap.Error(err))
		} else {
			log.Info("supplier CNPJ mapping loaded")
		}
	}

	var soapClient *soap.Client
	if cfg.SOAP.Endpoint != "" {
		soapClient = soap.New(cfg.SOAP)
		log.Info("SOAP submitter configured", zap.String("endpoint", cfg.SOAP.Endpoint))
	}

	textExtractor := extract.NewTextExtractor(log)
	opticalExtractor := extract.NewOpticalExtractor(log, cfg.Pipeline.RenderDPI)
	ocrExtractor := extract.NewOCRExtractor(log, cfg.Pipeline.RenderDPI, cfg.OCR.Language)
	pipe := pipeline.New(log, textExtractor, opticalExtractor, ocrExtractor)

	pool := workerpool.New(cfg.Worker.PoolSize)

	handler := httpapi.New(log, cfg, pipe, pool, soapClient, supplierDir, archive, subs)
	router := handler.SetupRoutes()

	protectedRouter := issuer.Middleware(router, "/health")

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	log.Info("starting boleto pipeline service",
		zap.String("addr", addr),
		zap.Int("workerPoolSize", cfg.Worker.PoolSize),
		zap.Int("renderDPI", cfg.Pipeline.RenderDPI),
		zap.String("ocrLanguage", cfg.OCR.Language),
		zap.Bool("database", subs != nil),
		zap.Bool("storage", archive != nil),
		zap.Bool("soap", soapClient != nil),
		zap.Bool("suppliers", supplierDir != nil),
	)

	if err := http.ListenAndServe(addr, protectedRouter); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
