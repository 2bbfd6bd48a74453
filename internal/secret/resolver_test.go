package secret

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingSource struct {
	vals  []string
	errs  []error
	calls int
}

func (s *countingSource) Name() string { return "test" }

func (s *countingSource) Fetch(context.Context) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.vals) {
		return s.vals[i], nil
	}
	return s.vals[len(s.vals)-1], nil
}

func TestResolverFetchesOnce(t *testing.T) {
	src := &countingSource{vals: []string{"hunter2", "rotated"}}
	r := NewResolver(src, nil)

	first, err := r.Get(context.Background())
	require.NoError(t, err)
	second, err := r.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, "hunter2", first)
	assert.Equal(t, first, second)
}

func TestResolverDoesNotCacheFailure(t *testing.T) {
	boom := errors.New("store unavailable")
	src := &countingSource{vals: []string{"", "hunter2"}, errs: []error{boom}}
	r := NewResolver(src, nil)

	_, err := r.Get(context.Background())
	require.ErrorIs(t, err, boom)

	v, err := r.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hunter2", v)
	assert.Equal(t, 2, src.calls)
}

func TestResolverNeverLogsValue(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := NewResolver(&countingSource{vals: []string{"hunter2"}}, zap.New(core))

	_, err := r.Get(context.Background())
	require.NoError(t, err)
	_, err = r.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("using cached secret").Len())
	for _, e := range logs.All() {
		assert.NotContains(t, e.Message, "hunter2")
		for _, v := range e.ContextMap() {
			assert.NotEqual(t, "hunter2", v)
		}
	}
}
