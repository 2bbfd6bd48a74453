package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	values []string
	err    error
}

func (f *fakeWriter) Name() string { return "ssm:/site/password" }

func (f *fakeWriter) Put(_ context.Context, v string) error {
	if f.err != nil {
		return f.err
	}
	f.values = append(f.values, v)
	return nil
}

func TestRotate(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := &fakeWriter{}
	r := &rotator{writer: w, bytes: 24, log: zap.New(core)}

	out, err := r.handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result{Status: "rotated", Target: "ssm:/site/password"}, out)

	_, err = r.handle(context.Background())
	require.NoError(t, err)

	require.Len(t, w.values, 2)
	assert.Len(t, w.values[0], 32)
	assert.NotEqual(t, w.values[0], w.values[1])

	for _, e := range logs.All() {
		for _, v := range e.ContextMap() {
			assert.NotEqual(t, w.values[0], v)
		}
	}
}

func TestRotateFailure(t *testing.T) {
	boom := errors.New("access denied")
	r := &rotator{writer: &fakeWriter{err: boom}, bytes: 24, log: zap.NewNop()}

	_, err := r.handle(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PARAMETER_NAME", "")
	t.Setenv("SECRET_ARN", "arn:aws:secretsmanager:eu-west-2:123456789012:secret:site")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.TokenBytes)

	t.Setenv("ROTATE_BYTES", "8")
	_, err = loadConfig()
	assert.Error(t, err)

	t.Setenv("ROTATE_BYTES", "32")
	t.Setenv("SECRET_ARN", "")
	_, err = loadConfig()
	assert.Error(t, err)
}
