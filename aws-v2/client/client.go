// Package client reads items from DynamoDB with aws-sdk-go-v2.
package client

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/truora/dynamap/storage"
	"github.com/truora/dynamap/types"
)

var _ storage.Client = (*Client)(nil)

// GetItemAPI is the part of the DynamoDB API used for point reads, *dynamodb.Client satisfies it
type GetItemAPI interface {
	GetItem(ctx context.Context, input *dynamodb.GetItemInput, opt ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Option configures a Client
type Option func(*Client)

// WithConsistentRead sets the read consistency of every lookup
func WithConsistentRead(consistent bool) Option {
	return func(c *Client) {
		c.consistentRead = consistent
	}
}

// WithContainer registers the schema of a container
func WithContainer(name string, schema types.ContainerSchema) Option {
	return func(c *Client) {
		c.schemas[name] = schema
	}
}

// Client reads items through a GetItemAPI
type Client struct {
	api            GetItemAPI
	mu             sync.RWMutex
	schemas        map[string]types.ContainerSchema
	consistentRead bool
}

// NewClient returns a store reading through api
func NewClient(api GetItemAPI, opts ...Option) *Client {
	c := &Client{
		api:            api,
		schemas:        map[string]types.ContainerSchema{},
		consistentRead: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewFromConfig returns a store reading from the DynamoDB service configured by cfg
func NewFromConfig(cfg aws.Config, opts ...Option) *Client {
	return NewClient(dynamodb.NewFromConfig(cfg), opts...)
}

// RegisterContainer sets the schema used to build the keys of a container.
// Unregistered containers are tables keyed by id alone.
func (c *Client) RegisterContainer(name string, schema types.ContainerSchema) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.schemas[name] = schema
}

func (c *Client) schema(name string) types.ContainerSchema {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.schemas[name]
}

// ReadItem looks up one item
func (c *Client) ReadItem(input *storage.ReadItemInput) (types.Document, error) {
	return c.ReadItemWithContext(context.Background(), input)
}

// ReadItemWithContext issues a single GetItem, API errors are returned unmodified
func (c *Client) ReadItemWithContext(ctx context.Context, input *storage.ReadItemInput) (types.Document, error) {
	out, err := c.api.GetItem(ctx, c.getItemInput(input))
	if err != nil {
		return nil, err
	}

	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}

	return out.Item, nil
}

func (c *Client) getItemInput(input *storage.ReadItemInput) *dynamodb.GetItemInput {
	schema := c.schema(input.Container)

	return &dynamodb.GetItemInput{
		TableName:      aws.String(schema.TableName(input.Container)),
		Key:            schema.Key(input.PartitionKeyValue(), input.ResourceID),
		ConsistentRead: aws.Bool(c.consistentRead),
	}
}
