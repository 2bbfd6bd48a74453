// document/main.go
package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/zoe-chingyung/resume-iac-public/internal/apigw"
	"github.com/zoe-chingyung/resume-iac-public/internal/logging"
	"github.com/zoe-chingyung/resume-iac-public/internal/storage"
)

const (
	contentTypePDF = "application/pdf"
	sampleLen      = 60
)

type documentConfig struct {
	Bucket   string `env:"RESUME_BUCKET" envDefault:"ching-resume-html"`
	Key      string `env:"RESUME_KEY" envDefault:"resume.pdf"`
	Filename string `env:"RESUME_FILENAME" envDefault:"resume.pdf"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func loadConfig() (documentConfig, error) {
	var cfg documentConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type fetcher interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

type documentHandler struct {
	store fetcher
	log   *zap.Logger
	cfg   documentConfig
}

var errorHeaders = apigw.CORS("*", "")

func (h *documentHandler) handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.log.Debug("received event",
		zap.String("method", req.HTTPMethod),
		zap.String("path", req.Path),
		zap.String("request_id", req.RequestContext.RequestID))

	h.log.Info("fetching document", zap.String("bucket", h.cfg.Bucket), zap.String("key", h.cfg.Key))
	data, err := h.store.Fetch(ctx, h.cfg.Bucket, h.cfg.Key)
	if err != nil {
		switch {
		case storage.IsNotFound(err):
			h.log.Error("s3 error", zap.Error(err))
			return apigw.JSON(http.StatusNotFound, errorHeaders, errorBody{Error: "PDF not found", Message: err.Error()}), nil
		case storage.IsServiceError(err):
			h.log.Error("s3 error", zap.Error(err))
			return apigw.JSON(http.StatusInternalServerError, errorHeaders, errorBody{Error: "Failed to fetch PDF", Message: err.Error()}), nil
		default:
			h.log.Error("unexpected error", zap.Error(err))
			return apigw.JSON(http.StatusInternalServerError, errorHeaders, errorBody{Error: "Internal server error"}), nil
		}
	}

	resp := apigw.Binary(http.StatusOK, h.successHeaders(), contentTypePDF, data)
	sample := resp.Body
	if len(sample) > sampleLen {
		sample = sample[:sampleLen]
	}
	h.log.Info("fetched document",
		zap.Int("bytes", len(data)),
		zap.Int("base64_length", len(resp.Body)),
		zap.String("base64_sample", sample))
	return resp, nil
}

func (h *documentHandler) successHeaders() map[string]string {
	headers := apigw.CORS("*", "GET, POST, OPTIONS")
	headers[apigw.HeaderContentDisposition] = "inline; filename=" + h.cfg.Filename
	return headers
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, "document")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		panic(err)
	}
	h := &documentHandler{
		store: storage.New(s3.NewFromConfig(awsCfg)),
		log:   log,
		cfg:   cfg,
	}
	lambda.Start(h.handle)
}
