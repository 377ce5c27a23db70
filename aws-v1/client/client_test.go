package client

import (
	"context"
	"testing"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/stretchr/testify/require"
	"github.com/truora/dynamap/storage"
	"github.com/truora/dynamap/types"
)

type fakeAPI struct {
	inputs []*dynamodb.GetItemInput
	output *dynamodb.GetItemOutput
	err    error
}

func (f *fakeAPI) GetItemWithContext(ctx aws.Context, input *dynamodb.GetItemInput, opts ...request.Option) (*dynamodb.GetItemOutput, error) {
	f.inputs = append(f.inputs, input)

	return f.output, f.err
}

func TestReadItem(t *testing.T) {
	c := require.New(t)

	api := &fakeAPI{output: &dynamodb.GetItemOutput{Item: map[string]*dynamodb.AttributeValue{
		"id":     {S: aws.String("1")},
		"tenant": {S: aws.String("acme")},
		"ports":  {L: []*dynamodb.AttributeValue{{N: aws.String("22")}, {N: aws.String("443")}}},
	}}}

	client := NewClient(api)
	client.RegisterContainer("devices", types.ContainerSchema{PartitionKeyAttribute: "tenant"})
	client.SetConsistentRead(false)

	acme := "acme"
	doc, err := client.ReadItem(&storage.ReadItemInput{Container: "devices", PartitionKey: &acme, ResourceID: "1"})
	c.NoError(err)
	c.Equal(&ddbtypes.AttributeValueMemberS{Value: "acme"}, doc["tenant"])
	c.Equal(&ddbtypes.AttributeValueMemberL{Value: []ddbtypes.AttributeValue{
		&ddbtypes.AttributeValueMemberN{Value: "22"},
		&ddbtypes.AttributeValueMemberN{Value: "443"},
	}}, doc["ports"])

	in := api.inputs[0]
	c.Equal("devices", aws.StringValue(in.TableName))
	c.False(aws.BoolValue(in.ConsistentRead))
	c.Equal("acme", aws.StringValue(in.Key["tenant"].S))
	c.Equal("1", aws.StringValue(in.Key["id"].S))
}

func TestReadItemNotFoundAndErrors(t *testing.T) {
	c := require.New(t)

	client := NewClient(&fakeAPI{output: &dynamodb.GetItemOutput{}})

	doc, err := client.ReadItemWithContext(context.Background(), &storage.ReadItemInput{Container: "orders", ResourceID: "1|x"})
	c.NoError(err)
	c.Nil(doc)

	apiErr := awserr.New(dynamodb.ErrCodeResourceNotFoundException, "Cannot do operations on a non-existent table", nil)
	client = NewClient(&fakeAPI{err: apiErr})

	_, err = client.ReadItem(&storage.ReadItemInput{Container: "orders", ResourceID: "1|x"})
	c.Equal(apiErr, err)
}

func TestMapperRoundTrip(t *testing.T) {
	c := require.New(t)

	doc := types.Document{
		"s":    &ddbtypes.AttributeValueMemberS{Value: "a"},
		"n":    &ddbtypes.AttributeValueMemberN{Value: "1.5"},
		"b":    &ddbtypes.AttributeValueMemberB{Value: []byte("x")},
		"bool": &ddbtypes.AttributeValueMemberBOOL{Value: true},
		"null": &ddbtypes.AttributeValueMemberNULL{Value: true},
		"m":    &ddbtypes.AttributeValueMemberM{Value: map[string]ddbtypes.AttributeValue{"k": &ddbtypes.AttributeValueMemberS{Value: "v"}}},
		"ss":   &ddbtypes.AttributeValueMemberSS{Value: []string{"a", "b"}},
		"ns":   &ddbtypes.AttributeValueMemberNS{Value: []string{"1"}},
		"bs":   &ddbtypes.AttributeValueMemberBS{Value: [][]byte{[]byte("y")}},
	}

	c.Equal(doc, mapAttributeValueToDocument(mapDocumentToDynamodb(doc)))

	c.Nil(mapAttributeValueToTypes(&dynamodb.AttributeValue{}))
	c.Empty(mapAttributeValueToDocument(map[string]*dynamodb.AttributeValue{"empty": {}}))
}
