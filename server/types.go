package server

// AttributeValue is the JSON wire form of a DynamoDB attribute value
type AttributeValue struct {
	B    []byte                     `json:"B,omitempty"`
	BOOL *bool                      `json:"BOOL,omitempty"`
	BS   [][]byte                   `json:"BS,omitempty"`
	L    []*AttributeValue          `json:"L,omitempty"`
	M    map[string]*AttributeValue `json:"M,omitempty"`
	N    *string                    `json:"N,omitempty"`
	NS   []string                   `json:"NS,omitempty"`
	NULL *bool                      `json:"NULL,omitempty"`
	S    *string                    `json:"S,omitempty"`
	SS   []string                   `json:"SS,omitempty"`
}

// KeySchemaElement is one key attribute of a table
type KeySchemaElement struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"`
}

// CreateTableInput is the CreateTable request
type CreateTableInput struct {
	TableName string             `json:"TableName"`
	KeySchema []KeySchemaElement `json:"KeySchema"`
}

// TableDescription describes a table
type TableDescription struct {
	TableName   string             `json:"TableName"`
	KeySchema   []KeySchemaElement `json:"KeySchema"`
	ItemCount   int64              `json:"ItemCount"`
	TableStatus string             `json:"TableStatus"`
}

// CreateTableOutput is the CreateTable response
type CreateTableOutput struct {
	TableDescription *TableDescription `json:"TableDescription"`
}

// DescribeTableInput is the DescribeTable request
type DescribeTableInput struct {
	TableName string `json:"TableName"`
}

// DescribeTableOutput is the DescribeTable response
type DescribeTableOutput struct {
	Table *TableDescription `json:"Table"`
}

// PutItemInput is the PutItem request
type PutItemInput struct {
	TableName string                     `json:"TableName"`
	Item      map[string]*AttributeValue `json:"Item"`
}

// PutItemOutput is the PutItem response
type PutItemOutput struct{}

// GetItemInput is the GetItem request
type GetItemInput struct {
	TableName      string                     `json:"TableName"`
	Key            map[string]*AttributeValue `json:"Key"`
	ConsistentRead *bool                      `json:"ConsistentRead,omitempty"`
}

// GetItemOutput is the GetItem response, Item is omitted when nothing matches
type GetItemOutput struct {
	Item map[string]*AttributeValue `json:"Item,omitempty"`
}
