package core

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/truora/dynamap/storage"
)

// FailureCondition describe the failure condition to emulate
type FailureCondition string

const (
	// FailureConditionNone emulates the system is working
	FailureConditionNone FailureCondition = "none"
	// FailureConditionInternalServerError emulates the store having internal issues
	FailureConditionInternalServerError FailureCondition = "internal_server"
	// FailureConditionThrottled emulates exceeding the provisioned throughput
	FailureConditionThrottled FailureCondition = "throttled"
)

var (
	emulatedInternalServeError = ddbtypes.InternalServerError{Message: aws.String("emulated error")}
	emulatedThrottlingError    = ddbtypes.ProvisionedThroughputExceededException{Message: aws.String("emulated throttling")}

	emulatingErrors = map[FailureCondition]error{
		FailureConditionNone:                nil,
		FailureConditionInternalServerError: &emulatedInternalServeError,
		FailureConditionThrottled:           &emulatedThrottlingError,
	}
)

// EmulateFailure forces the in-memory client to fail
func EmulateFailure(client storage.Client, condition FailureCondition) {
	memClient, ok := client.(*Client)
	if !ok {
		panic("EmulateFailure: invalid client type")
	}

	memClient.setFailureCondition(condition)
}
