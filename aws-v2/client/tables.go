package client

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/truora/dynamap/types"
)

// TableAPI creates and writes tables
type TableAPI interface {
	CreateTable(ctx context.Context, input *dynamodb.CreateTableInput, opt ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// EnsureContainer creates the table backing a container, an existing table is not an error
func EnsureContainer(ctx context.Context, api TableAPI, name string, schema types.ContainerSchema) error {
	_, err := api.CreateTable(ctx, generateAddTableInput(schema.TableName(name), schema))

	var errResourceInUseException *dynamodbtypes.ResourceInUseException
	if errors.As(err, &errResourceInUseException) {
		return nil
	}

	return err
}

// PutDocument writes a raw item into the table backing a container
func PutDocument(ctx context.Context, api TableAPI, name string, schema types.ContainerSchema, doc types.Document) error {
	_, err := api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(schema.TableName(name)),
		Item:      doc,
	})

	return err
}

func generateAddTableInput(tableName string, schema types.ContainerSchema) *dynamodb.CreateTableInput {
	hashKey, rangeKey := schema.IDAttributeOrDefault(), ""
	if schema.PartitionKeyAttribute != "" && schema.PartitionKeyAttribute != hashKey {
		hashKey, rangeKey = schema.PartitionKeyAttribute, hashKey
	}

	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []dynamodbtypes.AttributeDefinition{
			{
				AttributeName: aws.String(hashKey),
				AttributeType: dynamodbtypes.ScalarAttributeTypeS,
			},
		},
		BillingMode: dynamodbtypes.BillingModePayPerRequest,
		KeySchema: []dynamodbtypes.KeySchemaElement{
			{
				AttributeName: aws.String(hashKey),
				KeyType:       dynamodbtypes.KeyTypeHash,
			},
		},
		TableName: aws.String(tableName),
	}

	if rangeKey != "" {
		input.AttributeDefinitions = append(input.AttributeDefinitions,
			dynamodbtypes.AttributeDefinition{
				AttributeName: aws.String(rangeKey),
				AttributeType: dynamodbtypes.ScalarAttributeTypeS,
			},
		)

		input.KeySchema = append(input.KeySchema,
			dynamodbtypes.KeySchemaElement{
				AttributeName: aws.String(rangeKey),
				KeyType:       dynamodbtypes.KeyTypeRange,
			},
		)
	}

	return input
}
