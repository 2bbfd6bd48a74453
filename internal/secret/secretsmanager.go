package secret

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	sm "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretValueGetter is the subset of the Secrets Manager client used to read secrets.
type SecretValueGetter interface {
	GetSecretValue(ctx context.Context, params *sm.GetSecretValueInput, optFns ...func(*sm.Options)) (*sm.GetSecretValueOutput, error)
}

// SecretValuePutter is the subset of the Secrets Manager client used to write secrets.
type SecretValuePutter interface {
	PutSecretValue(ctx context.Context, params *sm.PutSecretValueInput, optFns ...func(*sm.Options)) (*sm.PutSecretValueOutput, error)
}

// SecretsManagerSource reads the secret string of a Secrets Manager secret.
// Surrounding whitespace is trimmed.
type SecretsManagerSource struct {
	Client   SecretValueGetter
	SecretID string
}

func (s SecretsManagerSource) Name() string { return "secretsmanager:" + s.SecretID }

func (s SecretsManagerSource) Fetch(ctx context.Context) (string, error) {
	out, err := s.Client.GetSecretValue(ctx, &sm.GetSecretValueInput{SecretId: aws.String(s.SecretID)})
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", ErrEmptySecret
	}
	v := strings.TrimSpace(aws.ToString(out.SecretString))
	if v == "" {
		return "", ErrEmptySecret
	}
	return v, nil
}

type SecretsManagerWriter struct {
	Client   SecretValuePutter
	SecretID string
}

func (w SecretsManagerWriter) Name() string { return "secretsmanager:" + w.SecretID }

func (w SecretsManagerWriter) Put(ctx context.Context, value string) error {
	_, err := w.Client.PutSecretValue(ctx, &sm.PutSecretValueInput{
		SecretId:     aws.String(w.SecretID),
		SecretString: aws.String(value),
	})
	return err
}
