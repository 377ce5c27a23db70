package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/truora/dynamap/storage"
	"github.com/truora/dynamap/types"
)

var _ storage.Client = (*Client)(nil)

// Client is an in-memory store of containers
type Client struct {
	tables          map[string]*Table
	mu              sync.Mutex
	forceFailureErr error
	latency         time.Duration
	reads           int
}

// NewClient initializes an empty in-memory store
func NewClient() *Client {
	return &Client{
		tables: map[string]*Table{},
		mu:     sync.Mutex{},
	}
}

// CreateContainer adds a container with the given schema
func (c *Client) CreateContainer(name string, schema types.ContainerSchema) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tables[name]; ok {
		return &ddbtypes.ResourceInUseException{Message: aws.String(fmt.Sprintf("Container already exists: %s", name))}
	}

	c.tables[name] = NewTable(name, schema)

	return nil
}

// DescribeContainer returns the description of the container table
func (c *Client) DescribeContainer(name string) (*ddbtypes.TableDescription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	table, err := c.getTable(name)
	if err != nil {
		return nil, err
	}

	return table.Description(), nil
}

// PutItem stores a raw item
func (c *Client) PutItem(container string, item types.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.forceFailureErr != nil {
		return c.forceFailureErr
	}

	table, err := c.getTable(container)
	if err != nil {
		return err
	}

	_, err = table.Put(item)

	return mapKnownError(err)
}

// PutValue marshals v with attributevalue and stores it
func (c *Client) PutValue(container string, v any) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return err
	}

	return c.PutItem(container, item)
}

// DeleteItem removes the item identified by the partition key and id
func (c *Client) DeleteItem(container string, partitionKey, resourceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	table, err := c.getTable(container)
	if err != nil {
		return err
	}

	_, err = table.Delete(table.Schema.Key(partitionKey, resourceID))

	return mapKnownError(err)
}

// ReadItem looks up one item
func (c *Client) ReadItem(input *storage.ReadItemInput) (types.Document, error) {
	return c.ReadItemWithContext(context.Background(), input)
}

// ReadItemWithContext looks up one item, waiting for the emulated latency unless ctx is done first
func (c *Client) ReadItemWithContext(ctx context.Context, input *storage.ReadItemInput) (types.Document, error) {
	return c.read(ctx, input.Container, func(table *Table) (types.Document, error) {
		if table.Schema.PartitionKeyAttribute != "" && input.PartitionKey == nil {
			return nil, &smithy.GenericAPIError{Code: codeValidation, Message: "The provided key element does not match the schema"}
		}

		return table.Schema.Key(input.PartitionKeyValue(), input.ResourceID), nil
	})
}

// GetItem looks up the item matching a raw key of the container table
func (c *Client) GetItem(ctx context.Context, container string, key types.Document) (types.Document, error) {
	return c.read(ctx, container, func(*Table) (types.Document, error) {
		return key, nil
	})
}

func (c *Client) read(ctx context.Context, container string, keyFn func(*Table) (types.Document, error)) (types.Document, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reads++

	if c.forceFailureErr != nil {
		return nil, c.forceFailureErr
	}

	table, err := c.getTable(container)
	if err != nil {
		return nil, err
	}

	key, err := keyFn(table)
	if err != nil {
		return nil, err
	}

	item, err := table.Get(key)
	if err != nil {
		return nil, mapKnownError(err)
	}

	return item, nil
}

// SetLatency delays every read by d
func (c *Client) SetLatency(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latency = d
}

// Reads returns the number of lookups served
func (c *Client) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reads
}

// ClearContainer removes all data from a specific container
func (c *Client) ClearContainer(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	table, err := c.getTable(name)
	if err != nil {
		return err
	}

	table.Clear()

	return nil
}

// Reset drops every container and emulation setting
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tables = map[string]*Table{}
	c.forceFailureErr = nil
	c.latency = 0
	c.reads = 0
}

func (c *Client) setFailureCondition(condition FailureCondition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.forceFailureErr = emulatingErrors[condition]
}

func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	latency := c.latency
	c.mu.Unlock()

	if latency == 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) getTable(name string) (*Table, error) {
	table, ok := c.tables[name]
	if !ok {
		return nil, &ddbtypes.ResourceNotFoundException{Message: aws.String("Cannot do operations on a non-existent table")}
	}

	return table, nil
}

func mapKnownError(err error) error {
	var intErr types.Error

	if !errors.As(err, &intErr) {
		return err
	}

	return &smithy.GenericAPIError{Code: intErr.Code(), Message: intErr.Message()}
}
