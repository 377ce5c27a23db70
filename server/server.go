// Package server exposes an in-memory store over the DynamoDB JSON protocol.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/smithy-go"
	"github.com/charmbracelet/log"
	jsoniter "github.com/json-iterator/go"
	"github.com/truora/dynamap/core"
)

const (
	codeValidation    = "ValidationException"
	codeSerialization = "SerializationException"
	codeInternalError = "InternalServerError"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server implements http.Handler for the table and point read subset of the DynamoDB JSON API
type Server struct {
	store  *core.Client
	logger *log.Logger
}

// NewServer creates an HTTP handler serving store, a nil logger uses the default one
func NewServer(store *core.Client, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	return &Server{store: store, logger: logger}
}

// Store returns the in-memory store served by s
func (s *Server) Store() *core.Client {
	return s.store
}

// ServeHTTP dispatches DynamoDB JSON API requests based on X-Amz-Target.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer func() {
		if err := r.Body.Close(); err != nil {
			s.logger.Warn("error closing body", "err", err)
		}
	}()

	op := ""

	target := r.Header.Get("X-Amz-Target")
	if target != "" {
		parts := strings.Split(target, ".")
		op = parts[len(parts)-1]
	}

	s.logger.Debug("request", "op", op)

	decoder := json.NewDecoder(r.Body)

	var (
		resp any
		err  error
	)

	switch op {
	case "CreateTable":
		var input CreateTableInput
		if err = decode(decoder, &input); err == nil {
			resp, err = s.createTable(&input)
		}
	case "DescribeTable":
		var input DescribeTableInput
		if err = decode(decoder, &input); err == nil {
			resp, err = s.describeTable(&input)
		}
	case "PutItem":
		var input PutItemInput
		if err = decode(decoder, &input); err == nil {
			resp, err = s.putItem(&input)
		}
	case "GetItem":
		var input GetItemInput
		if err = decode(decoder, &input); err == nil {
			resp, err = s.getItem(r.Context(), &input)
		}
	default:
		http.Error(w, "unsupported operation", http.StatusBadRequest)
		return
	}

	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-amz-json-1.0")

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func decode(decoder *jsoniter.Decoder, v any) error {
	if err := decoder.Decode(v); err != nil {
		return &smithy.GenericAPIError{Code: codeSerialization, Message: err.Error()}
	}

	return nil
}

func (s *Server) createTable(input *CreateTableInput) (*CreateTableOutput, error) {
	schema, ok := mapKeySchemaToContainer(input.KeySchema)
	if !ok {
		return nil, &smithy.GenericAPIError{Code: codeValidation, Message: "No Hash Key specified in schema"}
	}

	if err := s.store.CreateContainer(input.TableName, schema); err != nil {
		return nil, err
	}

	desc, err := s.store.DescribeContainer(input.TableName)
	if err != nil {
		return nil, err
	}

	return &CreateTableOutput{TableDescription: mapTableDescription(desc)}, nil
}

func (s *Server) describeTable(input *DescribeTableInput) (*DescribeTableOutput, error) {
	desc, err := s.store.DescribeContainer(input.TableName)
	if err != nil {
		return nil, err
	}

	return &DescribeTableOutput{Table: mapTableDescription(desc)}, nil
}

func (s *Server) putItem(input *PutItemInput) (*PutItemOutput, error) {
	if err := s.store.PutItem(input.TableName, mapAttributeValueMapToDocument(input.Item)); err != nil {
		return nil, err
	}

	return &PutItemOutput{}, nil
}

func (s *Server) getItem(ctx context.Context, input *GetItemInput) (*GetItemOutput, error) {
	item, err := s.store.GetItem(ctx, input.TableName, mapAttributeValueMapToDocument(input.Key))
	if err != nil {
		return nil, err
	}

	return &GetItemOutput{Item: mapDocumentToAttributeValueMap(item)}, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	type errorBody struct {
		Type    string `json:"__type"`
		Message string `json:"message"`
	}

	code := http.StatusBadRequest
	msg := err.Error()
	typ := "InternalFailure"

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		typ = apiErr.ErrorCode()
		msg = apiErr.ErrorMessage()
	}

	if typ == codeInternalError || typ == "InternalFailure" {
		code = http.StatusInternalServerError
	}

	s.logger.Debug("request failed", "type", typ, "err", msg)

	w.Header().Set("Content-Type", "application/x-amz-json-1.0")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorBody{Type: typ, Message: msg})
}
