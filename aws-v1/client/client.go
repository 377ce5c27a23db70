// Package client reads items from DynamoDB with aws-sdk-go.
package client

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/truora/dynamap/storage"
	"github.com/truora/dynamap/types"
)

var _ storage.Client = (*Client)(nil)

// GetItemAPI is the part of dynamodbiface.DynamoDBAPI used for point reads
type GetItemAPI interface {
	GetItemWithContext(ctx aws.Context, input *dynamodb.GetItemInput, opts ...request.Option) (*dynamodb.GetItemOutput, error)
}

// Client reads items through a GetItemAPI
type Client struct {
	api            GetItemAPI
	mu             sync.RWMutex
	schemas        map[string]types.ContainerSchema
	consistentRead bool
}

// NewClient returns a store reading through api
func NewClient(api GetItemAPI) *Client {
	return &Client{
		api:            api,
		schemas:        map[string]types.ContainerSchema{},
		consistentRead: true,
	}
}

// NewFromSession returns a store reading from the DynamoDB service of sess
func NewFromSession(sess *session.Session, cfgs ...*aws.Config) *Client {
	return NewClient(dynamodb.New(sess, cfgs...))
}

// SetConsistentRead sets the read consistency of every lookup
func (c *Client) SetConsistentRead(consistent bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.consistentRead = consistent
}

// RegisterContainer sets the schema used to build the keys of a container
func (c *Client) RegisterContainer(name string, schema types.ContainerSchema) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.schemas[name] = schema
}

// ReadItem looks up one item
func (c *Client) ReadItem(input *storage.ReadItemInput) (types.Document, error) {
	return c.ReadItemWithContext(context.Background(), input)
}

// ReadItemWithContext issues a single GetItem, API errors are returned unmodified
func (c *Client) ReadItemWithContext(ctx context.Context, input *storage.ReadItemInput) (types.Document, error) {
	c.mu.RLock()
	schema := c.schemas[input.Container]
	consistent := c.consistentRead
	c.mu.RUnlock()

	out, err := c.api.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(schema.TableName(input.Container)),
		Key:            mapDocumentToDynamodb(schema.Key(input.PartitionKeyValue(), input.ResourceID)),
		ConsistentRead: aws.Bool(consistent),
	})
	if err != nil {
		return nil, err
	}

	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}

	return mapAttributeValueToDocument(out.Item), nil
}
