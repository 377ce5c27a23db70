package server

import (
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/truora/dynamap/types"
)

// AttributeValue (JSON) -> ddbtypes.AttributeValue
func mapAttributeValueToDDB(av *AttributeValue) ddbtypes.AttributeValue {
	switch {
	case av == nil:
		return nil
	case av.S != nil:
		return &ddbtypes.AttributeValueMemberS{Value: *av.S}
	case av.N != nil:
		return &ddbtypes.AttributeValueMemberN{Value: *av.N}
	case av.B != nil:
		return &ddbtypes.AttributeValueMemberB{Value: av.B}
	case av.BOOL != nil:
		return &ddbtypes.AttributeValueMemberBOOL{Value: *av.BOOL}
	case av.NULL != nil:
		return &ddbtypes.AttributeValueMemberNULL{Value: *av.NULL}
	case av.SS != nil:
		return &ddbtypes.AttributeValueMemberSS{Value: av.SS}
	case av.NS != nil:
		return &ddbtypes.AttributeValueMemberNS{Value: av.NS}
	case av.BS != nil:
		return &ddbtypes.AttributeValueMemberBS{Value: av.BS}
	case av.L != nil:
		list := make([]ddbtypes.AttributeValue, len(av.L))
		for i, v := range av.L {
			list[i] = mapAttributeValueToDDB(v)
		}

		return &ddbtypes.AttributeValueMemberL{Value: list}
	case av.M != nil:
		return &ddbtypes.AttributeValueMemberM{Value: mapAttributeValueMapToDocument(av.M)}
	}

	return nil
}

func mapAttributeValueMapToDocument(m map[string]*AttributeValue) types.Document {
	if m == nil {
		return nil
	}

	doc := make(types.Document, len(m))
	for k, v := range m {
		doc[k] = mapAttributeValueToDDB(v)
	}

	return doc
}

// ddbtypes.AttributeValue -> AttributeValue (JSON)
func mapDDBToAttributeValue(av ddbtypes.AttributeValue) *AttributeValue {
	switch v := av.(type) {
	case *ddbtypes.AttributeValueMemberS:
		return &AttributeValue{S: &v.Value}
	case *ddbtypes.AttributeValueMemberN:
		return &AttributeValue{N: &v.Value}
	case *ddbtypes.AttributeValueMemberB:
		return &AttributeValue{B: v.Value}
	case *ddbtypes.AttributeValueMemberBOOL:
		return &AttributeValue{BOOL: &v.Value}
	case *ddbtypes.AttributeValueMemberNULL:
		return &AttributeValue{NULL: &v.Value}
	case *ddbtypes.AttributeValueMemberSS:
		return &AttributeValue{SS: v.Value}
	case *ddbtypes.AttributeValueMemberNS:
		return &AttributeValue{NS: v.Value}
	case *ddbtypes.AttributeValueMemberBS:
		return &AttributeValue{BS: v.Value}
	case *ddbtypes.AttributeValueMemberL:
		list := make([]*AttributeValue, len(v.Value))
		for i, item := range v.Value {
			list[i] = mapDDBToAttributeValue(item)
		}

		return &AttributeValue{L: list}
	case *ddbtypes.AttributeValueMemberM:
		return &AttributeValue{M: mapDocumentToAttributeValueMap(v.Value)}
	}

	return nil
}

func mapDocumentToAttributeValueMap(doc types.Document) map[string]*AttributeValue {
	if doc == nil {
		return nil
	}

	out := make(map[string]*AttributeValue, len(doc))
	for k, v := range doc {
		out[k] = mapDDBToAttributeValue(v)
	}

	return out
}

// mapKeySchemaToContainer reads a hash key as the id and a hash and range pair as partition key and id
func mapKeySchemaToContainer(keySchema []KeySchemaElement) (types.ContainerSchema, bool) {
	var hashKey, rangeKey string

	for _, k := range keySchema {
		switch ddbtypes.KeyType(k.KeyType) {
		case ddbtypes.KeyTypeHash:
			hashKey = k.AttributeName
		case ddbtypes.KeyTypeRange:
			rangeKey = k.AttributeName
		}
	}

	if hashKey == "" {
		return types.ContainerSchema{}, false
	}

	if rangeKey == "" {
		return types.ContainerSchema{IDAttribute: hashKey}, true
	}

	return types.ContainerSchema{PartitionKeyAttribute: hashKey, IDAttribute: rangeKey}, true
}

func mapTableDescription(td *ddbtypes.TableDescription) *TableDescription {
	out := &TableDescription{
		TableStatus: string(td.TableStatus),
	}

	if td.TableName != nil {
		out.TableName = *td.TableName
	}

	if td.ItemCount != nil {
		out.ItemCount = *td.ItemCount
	}

	for _, k := range td.KeySchema {
		if k.AttributeName == nil {
			continue
		}

		out.KeySchema = append(out.KeySchema, KeySchemaElement{AttributeName: *k.AttributeName, KeyType: string(k.KeyType)})
	}

	return out
}
