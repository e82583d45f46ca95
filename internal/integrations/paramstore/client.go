// Package paramstore resolves LLM provider tokens from AWS SSM Parameter
// Store, or from the environment when no parameter is configured.
package paramstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ErrParameterNotFound is returned when the token parameter does not exist
// in the account and region the client talks to.
var ErrParameterNotFound = errors.New("paramstore: parameter not found")

type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Getter reads one decrypted parameter value.
type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Client reads token parameters through SSM. Values are always requested
// decrypted so SecureString tokens work unchanged.
type Client struct {
	api ssmAPI
}

func New(api ssmAPI) (*Client, error) {
	if api == nil {
		return nil, errors.New("paramstore: api must not be nil")
	}
	return &Client{api: api}, nil
}

func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	if c.api == nil {
		return "", errors.New("paramstore: client not initialized")
	}
	name, err := normalizeName(name)
	if err != nil {
		return "", err
	}

	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *types.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %q", ErrParameterNotFound, name)
		}
		return "", fmt.Errorf("paramstore: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("paramstore: parameter %q has no value", name)
	}
	// A StringList cannot hold the {"token":...} document.
	if out.Parameter.Type == types.ParameterTypeStringList {
		return "", fmt.Errorf("paramstore: parameter %q is a StringList", name)
	}
	return aws.ToString(out.Parameter.Value), nil
}

// normalizeName trims the name and rejects hierarchical names that are not
// rooted, which SSM would refuse anyway.
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("paramstore: name is required")
	}
	if strings.Contains(name, "/") && !strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("paramstore: hierarchical name %q must start with /", name)
	}
	return name, nil
}
