package client

import (
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/truora/dynamap/types"
)

func mapAttributeValueToDocument(attrs map[string]*dynamodb.AttributeValue) types.Document {
	doc := make(types.Document, len(attrs))

	for name, attr := range attrs {
		if v := mapAttributeValueToTypes(attr); v != nil {
			doc[name] = v
		}
	}

	return doc
}

func mapAttributeValueToTypes(attr *dynamodb.AttributeValue) ddbtypes.AttributeValue {
	switch {
	case attr == nil:
		return nil
	case attr.S != nil:
		return &ddbtypes.AttributeValueMemberS{Value: aws.StringValue(attr.S)}
	case attr.N != nil:
		return &ddbtypes.AttributeValueMemberN{Value: aws.StringValue(attr.N)}
	case attr.B != nil:
		return &ddbtypes.AttributeValueMemberB{Value: attr.B}
	case attr.BOOL != nil:
		return &ddbtypes.AttributeValueMemberBOOL{Value: aws.BoolValue(attr.BOOL)}
	case attr.NULL != nil:
		return &ddbtypes.AttributeValueMemberNULL{Value: aws.BoolValue(attr.NULL)}
	case attr.M != nil:
		return &ddbtypes.AttributeValueMemberM{Value: mapAttributeValueToDocument(attr.M)}
	case attr.L != nil:
		return &ddbtypes.AttributeValueMemberL{Value: mapAttributeValueListToTypes(attr.L)}
	case attr.SS != nil:
		return &ddbtypes.AttributeValueMemberSS{Value: aws.StringValueSlice(attr.SS)}
	case attr.NS != nil:
		return &ddbtypes.AttributeValueMemberNS{Value: aws.StringValueSlice(attr.NS)}
	case attr.BS != nil:
		return &ddbtypes.AttributeValueMemberBS{Value: attr.BS}
	}

	return nil
}

func mapAttributeValueListToTypes(attrs []*dynamodb.AttributeValue) []ddbtypes.AttributeValue {
	list := make([]ddbtypes.AttributeValue, 0, len(attrs))

	for _, attr := range attrs {
		if v := mapAttributeValueToTypes(attr); v != nil {
			list = append(list, v)
		}
	}

	return list
}

func mapDocumentToDynamodb(doc types.Document) map[string]*dynamodb.AttributeValue {
	attrs := make(map[string]*dynamodb.AttributeValue, len(doc))

	for name, v := range doc {
		if attr := mapTypesToAttributeValue(v); attr != nil {
			attrs[name] = attr
		}
	}

	return attrs
}

func mapTypesToAttributeValue(v ddbtypes.AttributeValue) *dynamodb.AttributeValue {
	switch val := v.(type) {
	case *ddbtypes.AttributeValueMemberS:
		return &dynamodb.AttributeValue{S: aws.String(val.Value)}
	case *ddbtypes.AttributeValueMemberN:
		return &dynamodb.AttributeValue{N: aws.String(val.Value)}
	case *ddbtypes.AttributeValueMemberB:
		return &dynamodb.AttributeValue{B: val.Value}
	case *ddbtypes.AttributeValueMemberBOOL:
		return &dynamodb.AttributeValue{BOOL: aws.Bool(val.Value)}
	case *ddbtypes.AttributeValueMemberNULL:
		return &dynamodb.AttributeValue{NULL: aws.Bool(val.Value)}
	case *ddbtypes.AttributeValueMemberM:
		return &dynamodb.AttributeValue{M: mapDocumentToDynamodb(val.Value)}
	case *ddbtypes.AttributeValueMemberL:
		list := make([]*dynamodb.AttributeValue, 0, len(val.Value))
		for _, item := range val.Value {
			if attr := mapTypesToAttributeValue(item); attr != nil {
				list = append(list, attr)
			}
		}

		return &dynamodb.AttributeValue{L: list}
	case *ddbtypes.AttributeValueMemberSS:
		return &dynamodb.AttributeValue{SS: aws.StringSlice(val.Value)}
	case *ddbtypes.AttributeValueMemberNS:
		return &dynamodb.AttributeValue{NS: aws.StringSlice(val.Value)}
	case *ddbtypes.AttributeValueMemberBS:
		return &dynamodb.AttributeValue{BS: val.Value}
	}

	return nil
}
