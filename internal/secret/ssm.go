package secret

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmTypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ParameterGetter is the subset of the SSM client used to read parameters.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ParameterPutter is the subset of the SSM client used to write parameters.
type ParameterPutter interface {
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
}

// ParameterSource reads the secret from an SSM SecureString parameter.
type ParameterSource struct {
	Client        ParameterGetter
	ParameterName string
}

func (s ParameterSource) Name() string { return "ssm:" + s.ParameterName }

func (s ParameterSource) Fetch(ctx context.Context) (string, error) {
	out, err := s.Client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.ParameterName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	if out == nil || out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", ErrEmptySecret
	}
	return aws.ToString(out.Parameter.Value), nil
}

// ParameterWriter overwrites an SSM parameter with a new SecureString value.
type ParameterWriter struct {
	Client        ParameterPutter
	ParameterName string
}

func (w ParameterWriter) Name() string { return "ssm:" + w.ParameterName }

func (w ParameterWriter) Put(ctx context.Context, value string) error {
	_, err := w.Client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(w.ParameterName),
		Value:     aws.String(value),
		Type:      ssmTypes.ParameterTypeSecureString,
		Overwrite: aws.Bool(true),
	})
	return err
}
