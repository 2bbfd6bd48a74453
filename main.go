package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sm "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/zoe-chingyung/resume-iac-public/internal/apigw"
	"github.com/zoe-chingyung/resume-iac-public/internal/geoip"
	"github.com/zoe-chingyung/resume-iac-public/internal/logging"
	"github.com/zoe-chingyung/resume-iac-public/internal/secret"
	"github.com/zoe-chingyung/resume-iac-public/internal/storage"
)

const allowedMethods = "POST,OPTIONS"

type authConfig struct {
	ParameterName string `env:"PARAMETER_NAME"`
	SecretARN     string `env:"SECRET_ARN"`
	BucketName    string `env:"BUCKET_NAME,required,notEmpty"`
	ObjectKey     string `env:"OBJECT_KEY" envDefault:"index.html"`
	Expiration    int64  `env:"EXPIRATION,required,notEmpty"` // seconds
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"https://chingyung.uk"`
	GeoIPEndpoint string `env:"GEOIP_ENDPOINT" envDefault:"http://ip-api.com"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

func loadConfig() (authConfig, error) {
	var cfg authConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ParameterName == "" && cfg.SecretARN == "" {
		return cfg, fmt.Errorf("one of PARAMETER_NAME or SECRET_ARN must be set")
	}
	if cfg.Expiration <= 0 {
		return cfg, fmt.Errorf("EXPIRATION must be a positive number of seconds, got %d", cfg.Expiration)
	}
	return cfg, nil
}

type result struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

type secretGetter interface {
	Get(ctx context.Context) (string, error)
}

type locator interface {
	Lookup(ctx context.Context, ip string) string
}

type urlSigner interface {
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

type authHandler struct {
	secret secretGetter
	geo    locator
	store  urlSigner
	log    *zap.Logger

	bucket  string
	key     string
	expiry  time.Duration
	headers map[string]string
}

func newAuthHandler(cfg authConfig, secret secretGetter, geo locator, store urlSigner, log *zap.Logger) *authHandler {
	return &authHandler{
		secret:  secret,
		geo:     geo,
		store:   store,
		log:     log,
		bucket:  cfg.BucketName,
		key:     cfg.ObjectKey,
		expiry:  time.Duration(cfg.Expiration) * time.Second,
		headers: apigw.CORS(cfg.AllowedOrigin, allowedMethods),
	}
}

func (h *authHandler) respond(status int, r result) events.APIGatewayProxyResponse {
	return apigw.JSON(status, h.headers, r)
}

// fail maps an error from the secret store or S3 to a 500 response.
// The error detail is logged, never returned.
func (h *authHandler) fail(err error) events.APIGatewayProxyResponse {
	if storage.IsServiceError(err) {
		h.log.Error("aws service error", zap.Error(err))
		return h.respond(http.StatusInternalServerError, result{Message: "Service temporarily unavailable"})
	}
	h.log.Error("unexpected error", zap.Error(err))
	return h.respond(http.StatusInternalServerError, result{Message: "Internal server error"})
}

// clientIdentity returns the caller's source IP and user agent as seen by API Gateway.
func clientIdentity(req events.APIGatewayProxyRequest) (ip, userAgent string) {
	ip, userAgent = "unknown", "unknown"
	if v := strings.TrimSpace(req.RequestContext.Identity.SourceIP); v != "" {
		ip = v
	}
	if v := strings.TrimSpace(req.RequestContext.Identity.UserAgent); v != "" {
		userAgent = v
	}
	return ip, userAgent
}

// passwordPrefix keeps the first three characters of p for logging.
func passwordPrefix(p string) string {
	r := []rune(p)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r) + "***"
}

func decodeBody(req events.APIGatewayProxyRequest) (string, error) {
	body := req.Body
	if req.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return "", err
		}
		body = string(b)
	}
	return body, nil
}

type credentials struct {
	Password string `json:"password"`
}

// parseCredentials decodes the request body. Empty bodies and a top-level
// null are rejected.
func parseCredentials(req events.APIGatewayProxyRequest) (credentials, error) {
	body, err := decodeBody(req)
	if err != nil {
		return credentials{}, err
	}
	var in *credentials
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return credentials{}, err
	}
	if in == nil {
		return credentials{}, errors.New("request body is null")
	}
	return *in, nil
}

func (h *authHandler) handle(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	defer func() {
		if p := recover(); p != nil {
			resp, err = h.fail(fmt.Errorf("panic: %v", p)), nil
		}
	}()

	h.log.Debug("received event",
		zap.String("method", req.HTTPMethod),
		zap.String("path", req.Path),
		zap.String("request_id", req.RequestContext.RequestID))

	if req.HTTPMethod == http.MethodOptions {
		h.log.Info("handling CORS preflight request")
		return h.respond(http.StatusOK, result{Message: "CORS preflight OK"}), nil
	}

	in, err := parseCredentials(req)
	if err != nil {
		h.log.Error("invalid request body", zap.Error(err))
		return h.respond(http.StatusBadRequest, result{Message: "Invalid request body"}), nil
	}

	ip, userAgent := clientIdentity(req)
	location := h.geo.Lookup(ctx, ip)
	h.log.Info("request info",
		zap.String("ip", ip),
		zap.String("location", location),
		zap.String("user_agent", userAgent),
		zap.String("password_prefix", passwordPrefix(in.Password)))

	want, err := h.secret.Get(ctx)
	if err != nil {
		return h.fail(err), nil
	}
	if in.Password != want {
		h.log.Info("password mismatch")
		return h.respond(http.StatusUnauthorized, result{Message: "Unauthorized"}), nil
	}

	h.log.Info("password correct, generating presigned URL")
	url, err := h.store.SignedURL(ctx, h.bucket, h.key, h.expiry)
	if err != nil {
		return h.fail(err), nil
	}
	h.log.Info("presigned URL generated", zap.Duration("expires_in", h.expiry))
	return h.respond(http.StatusOK, result{Message: "Auth successful", URL: url}), nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, "auth")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		panic(err)
	}

	var src secret.Source
	if cfg.ParameterName != "" {
		src = secret.ParameterSource{Client: ssm.NewFromConfig(awsCfg), ParameterName: cfg.ParameterName}
	} else {
		src = secret.SecretsManagerSource{Client: sm.NewFromConfig(awsCfg), SecretID: cfg.SecretARN}
	}

	h := newAuthHandler(cfg,
		secret.NewResolver(src, log),
		geoip.New(cfg.GeoIPEndpoint, geoip.DefaultTimeout, log),
		storage.New(s3.NewFromConfig(awsCfg)),
		log,
	)
	lambda.Start(h.handle)
}
