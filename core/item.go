package core

import (
	"errors"
	"fmt"

	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/truora/dynamap/types"
)

var (
	// revive:disable-next-line
	errMissingField = errors.New("The number of conditions on the keys is invalid")
	// revive:disable-next-line
	errInvalidKeyType = errors.New("Invalid attribute value type")
)

// getItemValue returns the scalar value of a key attribute
func getItemValue(item types.Document, field string) (string, error) {
	val, ok := item[field]
	if !ok || val == nil {
		return "", fmt.Errorf("%w; field: %q", errMissingField, field)
	}

	switch v := val.(type) {
	case *ddbtypes.AttributeValueMemberS:
		if v.Value != "" {
			return v.Value, nil
		}
	case *ddbtypes.AttributeValueMemberN:
		if v.Value != "" {
			return v.Value, nil
		}
	case *ddbtypes.AttributeValueMemberB:
		if len(v.Value) > 0 {
			return fmt.Sprintf("%x", v.Value), nil
		}
	}

	return "", fmt.Errorf("%w; field %q", errInvalidKeyType, field)
}
