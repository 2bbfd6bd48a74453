package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3Types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	body []byte
	err  error
	in   *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(f.body)))}, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

type brokenBodyS3 struct{}

func (brokenBodyS3) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(failingReader{})}, nil
}

func TestFetch(t *testing.T) {
	client := &fakeS3{body: []byte("%PDF-1.4 test")}
	data, err := newWithClients(client, nil).Fetch(context.Background(), "bucket", "resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 test"), data)
	assert.Equal(t, "bucket", aws.ToString(client.in.Bucket))
	assert.Equal(t, "resume.pdf", aws.ToString(client.in.Key))
}

func TestFetchErrors(t *testing.T) {
	_, err := newWithClients(&fakeS3{err: &s3Types.NoSuchKey{Message: aws.String("gone")}}, nil).
		Fetch(context.Background(), "bucket", "missing.pdf")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	_, err = newWithClients(brokenBodyS3{}, nil).Fetch(context.Background(), "bucket", "resume.pdf")
	require.Error(t, err)
	assert.False(t, IsServiceError(err))
	assert.Contains(t, err.Error(), "s3://bucket/resume.pdf")
}

func TestSignedURL(t *testing.T) {
	client := s3.New(s3.Options{
		Region: "eu-west-2",
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"}, nil
		}),
	})

	raw, err := New(client).SignedURL(context.Background(), "site-bucket", "index.html", 5*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Contains(t, u.Host, "site-bucket")
	assert.Equal(t, "/index.html", u.Path)
	assert.Equal(t, "300", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
		service  bool
	}{
		{"typed no such key", &s3Types.NoSuchKey{}, true, true},
		{"generic no such key", &smithy.GenericAPIError{Code: "NoSuchKey"}, true, true},
		{"wrapped", fmt.Errorf("get: %w", &smithy.GenericAPIError{Code: "NoSuchKey"}), true, true},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false, true},
		{"plain", errors.New("boom"), false, false},
		{"nil", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.service, IsServiceError(tt.err))
		})
	}
}
