package core

import (
	"sort"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/truora/dynamap/types"
)

const codeValidation = "ValidationException"

// Table is an in-memory container
type Table struct {
	Name       string
	Schema     types.ContainerSchema
	SortedKeys []string
	Data       map[string]types.Document
	KeySchema  keySchema
}

// NewTable creates a new Table for the container schema
func NewTable(name string, schema types.ContainerSchema) *Table {
	return &Table{
		Name:       name,
		Schema:     schema,
		SortedKeys: []string{},
		Data:       map[string]types.Document{},
		KeySchema:  newKeySchema(schema),
	}
}

func (t *Table) setItem(key string, item types.Document) {
	_, exists := t.Data[key]
	t.Data[key] = item

	if !exists {
		t.SortedKeys = append(t.SortedKeys, key)
		sort.Strings(t.SortedKeys)
	}
}

// Clear removes data and sorted keys from a table
func (t *Table) Clear() {
	t.SortedKeys = []string{}
	t.Data = map[string]types.Document{}
}

// Count returns the number of stored items
func (t *Table) Count() int {
	return len(t.Data)
}

// Put puts an item into the table
func (t *Table) Put(item types.Document) (types.Document, error) {
	item = item.Copy()

	key, err := t.KeySchema.GetKey(item)
	if err != nil {
		return item, types.NewError(codeValidation, err.Error(), nil)
	}

	t.setItem(key, item)

	return item, nil
}

// Get returns a copy of the item matching the key, nil when it does not exist
func (t *Table) Get(key types.Document) (types.Document, error) {
	k, err := t.KeySchema.GetKey(key)
	if err != nil {
		return nil, types.NewError(codeValidation, err.Error(), nil)
	}

	return t.Data[k].Copy(), nil
}

// Delete deletes an item in the table based on the key
func (t *Table) Delete(key types.Document) (types.Document, error) {
	k, err := t.KeySchema.GetKey(key)
	if err != nil {
		return nil, types.NewError(codeValidation, err.Error(), nil)
	}

	// delete is idempotent
	item, ok := t.Data[k]
	if !ok {
		return nil, nil
	}

	delete(t.Data, k)

	pos := sort.SearchStrings(t.SortedKeys, k)
	if pos < len(t.SortedKeys) && t.SortedKeys[pos] == k {
		t.SortedKeys = append(t.SortedKeys[:pos], t.SortedKeys[pos+1:]...)
	}

	return item, nil
}

// Keys returns the key attributes of every stored item in key order
func (t *Table) Keys() []types.Document {
	keys := make([]types.Document, 0, len(t.SortedKeys))

	for _, k := range t.SortedKeys {
		keys = append(keys, t.KeySchema.getKeyItem(t.Data[k]))
	}

	return keys
}

// Description returns the description of a table
func (t *Table) Description() *ddbtypes.TableDescription {
	name := t.Name
	count := int64(len(t.Data))

	return &ddbtypes.TableDescription{
		TableName:   &name,
		ItemCount:   &count,
		KeySchema:   t.KeySchema.describe(),
		TableStatus: ddbtypes.TableStatusActive,
	}
}
