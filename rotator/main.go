// rotator/main.go
package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	sm "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/zoe-chingyung/resume-iac-public/internal/logging"
	"github.com/zoe-chingyung/resume-iac-public/internal/secret"
)

type rotatorConfig struct {
	ParameterName string `env:"PARAMETER_NAME"`
	SecretARN     string `env:"SECRET_ARN"`
	TokenBytes    int    `env:"ROTATE_BYTES" envDefault:"24"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

func loadConfig() (rotatorConfig, error) {
	var cfg rotatorConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ParameterName == "" && cfg.SecretARN == "" {
		return cfg, fmt.Errorf("one of PARAMETER_NAME or SECRET_ARN must be set")
	}
	if cfg.TokenBytes < 16 {
		return cfg, fmt.Errorf("ROTATE_BYTES must be at least 16, got %d", cfg.TokenBytes)
	}
	return cfg, nil
}

type result struct {
	Status string `json:"status"`
	Target string `json:"target"`
}

type rotator struct {
	writer secret.Writer
	bytes  int
	log    *zap.Logger
}

// handle replaces the stored password. Warm auth instances keep serving the
// value they cached until they are recycled.
func (r *rotator) handle(ctx context.Context) (result, error) {
	if err := secret.Rotate(ctx, r.writer, r.bytes); err != nil {
		r.log.Error("rotation failed", zap.String("target", r.writer.Name()), zap.Error(err))
		return result{}, err
	}
	r.log.Info("password rotated", zap.String("target", r.writer.Name()))
	return result{Status: "rotated", Target: r.writer.Name()}, nil
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, "rotator")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		panic(err)
	}

	var w secret.Writer
	if cfg.ParameterName != "" {
		w = secret.ParameterWriter{Client: ssm.NewFromConfig(awsCfg), ParameterName: cfg.ParameterName}
	} else {
		w = secret.SecretsManagerWriter{Client: sm.NewFromConfig(awsCfg), SecretID: cfg.SecretARN}
	}
	r := &rotator{writer: w, bytes: cfg.TokenBytes, log: log}
	lambda.Start(r.handle)
}
