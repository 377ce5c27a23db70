package core

import (
	"strings"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/truora/dynamap/types"
)

type keySchema struct {
	HashKey  string
	RangeKey string
}

// newKeySchema derives the table key from a container schema.
// Partitioned containers hash by partition key and range by id.
func newKeySchema(schema types.ContainerSchema) keySchema {
	id := schema.IDAttributeOrDefault()

	if schema.PartitionKeyAttribute == "" || schema.PartitionKeyAttribute == id {
		return keySchema{HashKey: id}
	}

	return keySchema{HashKey: schema.PartitionKeyAttribute, RangeKey: id}
}

func (ks keySchema) GetKey(item types.Document) (string, error) {
	val, err := getItemValue(item, ks.HashKey)
	if err != nil {
		return "", err
	}

	if ks.RangeKey == "" {
		return val, nil
	}

	rangeVal, err := getItemValue(item, ks.RangeKey)
	if err != nil {
		return "", err
	}

	return strings.Join([]string{val, rangeVal}, "."), nil
}

func (ks keySchema) describe() []ddbtypes.KeySchemaElement {
	desc := []ddbtypes.KeySchemaElement{
		{AttributeName: &ks.HashKey, KeyType: ddbtypes.KeyTypeHash},
	}

	if ks.RangeKey != "" {
		desc = append(desc, ddbtypes.KeySchemaElement{AttributeName: &ks.RangeKey, KeyType: ddbtypes.KeyTypeRange})
	}

	return desc
}

func (ks keySchema) getKeyItem(item types.Document) types.Document {
	keyItem := types.Document{}

	if v, ok := item[ks.HashKey]; ok {
		keyItem[ks.HashKey] = v
	}

	if v, ok := item[ks.RangeKey]; ok && ks.RangeKey != "" {
		keyItem[ks.RangeKey] = v
	}

	return keyItem
}
