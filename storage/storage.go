// Package storage defines the point lookup contract implemented by every store.
package storage

import (
	"context"

	"github.com/truora/dynamap/types"
)

// ReadItemInput identifies one item of a container
type ReadItemInput struct {
	Container string
	// PartitionKey is nil for containers without a partition key
	PartitionKey *string
	ResourceID   string
}

// PartitionKeyValue returns the partition key or the empty string
func (in *ReadItemInput) PartitionKeyValue() string {
	if in.PartitionKey == nil {
		return ""
	}

	return *in.PartitionKey
}

// Client performs point lookups.
// A nil document with a nil error means the item does not exist.
type Client interface {
	ReadItem(input *ReadItemInput) (types.Document, error)
	ReadItemWithContext(ctx context.Context, input *ReadItemInput) (types.Document, error)
}
