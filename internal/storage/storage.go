// Package storage reads objects from S3 and issues presigned download URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ObjectGetter is the subset of the S3 client used to read objects.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectPresigner is the subset of the S3 presign client used to sign downloads.
type ObjectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Store struct {
	objects ObjectGetter
	presign ObjectPresigner
}

func New(client *s3.Client) *Store {
	return &Store{objects: client, presign: s3.NewPresignClient(client)}
}

// newWithClients builds a Store from narrower clients; either may be nil if
// the caller never uses the matching method.
func newWithClients(objects ObjectGetter, presign ObjectPresigner) *Store {
	return &Store{objects: objects, presign: presign}
}

// Fetch returns the full body of bucket/key.
func (s *Store) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// SignedURL returns a presigned GET URL for bucket/key valid for ttl.
func (s *Store) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// IsNotFound reports whether err is an S3 NoSuchKey error.
func IsNotFound(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}

// IsServiceError reports whether err came back from an AWS API call.
func IsServiceError(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr)
}
