// Package functions adapts the upload and metadata services to AWS Lambda
// event shapes: HTTP API (payload v2) requests and S3 notifications.
package functions

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/abduss/filemeta/internal/cors"
	"github.com/abduss/filemeta/internal/metadata"
	"github.com/abduss/filemeta/internal/upload"
)

// HTTPHandler is the Lambda signature for HTTP API and function URL invocations.
type HTTPHandler func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// S3Handler is the Lambda signature for S3 object-created notifications.
type S3Handler func(ctx context.Context, evt events.S3Event) (metadata.ProcessingResult, error)

// Presign issues upload authorizations. The object name comes from the raw
// path, the filename query parameter or a JSON body, in that order.
func Presign(service upload.Authorizer, log *zap.Logger) HTTPHandler {
	log = orNop(log)
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		if isPreflight(req) {
			return preflight(cors.UploadMethods), nil
		}

		name := upload.ResolveObjectName(req.RawPath, req.QueryStringParameters["filename"], requestBody(req))

		auth, err := service.Authorize(ctx, name)
		if err != nil {
			log.Error("generate upload url", zap.String("object_name", name), zap.Error(err))
			status := http.StatusInternalServerError
			if errors.Is(err, upload.ErrObjectNameTooLong) {
				status = http.StatusBadRequest
			}
			return errorResponse(status, err, cors.UploadMethods), nil
		}
		return jsonResponse(http.StatusOK, auth, cors.UploadMethods), nil
	}
}

// GetMetadata lists every stored metadata record, newest first.
func GetMetadata(reader metadata.Lister, log *zap.Logger) HTTPHandler {
	log = orNop(log)
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		if isPreflight(req) {
			return preflight(cors.ReadMethods), nil
		}

		set, err := reader.ListAll(ctx)
		if err != nil {
			log.Error("retrieve metadata", zap.Error(err))
			return errorResponse(http.StatusInternalServerError, err, cors.ReadMethods), nil
		}
		return jsonResponse(http.StatusOK, set, cors.ReadMethods), nil
	}
}

// ProcessFile records metadata for every object in the notification. Errors
// are returned to the runtime so that the notification is redelivered.
func ProcessFile(writer metadata.Processor, log *zap.Logger) S3Handler {
	log = orNop(log)
	return func(ctx context.Context, evt events.S3Event) (metadata.ProcessingResult, error) {
		result, err := writer.Process(ctx, metadata.FromS3Event(evt))
		if err != nil {
			log.Error("process file notification", zap.Int("records", len(evt.Records)), zap.Error(err))
			return metadata.ProcessingResult{}, err
		}
		return result, nil
	}
}

func isPreflight(req events.APIGatewayV2HTTPRequest) bool {
	return req.RequestContext.HTTP.Method == http.MethodOptions
}

func requestBody(req events.APIGatewayV2HTTPRequest) []byte {
	if req.Body == "" {
		return nil
	}
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil
		}
		return decoded
	}
	return []byte(req.Body)
}

func preflight(methods string) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusNoContent,
		Headers:    cors.Headers(methods),
	}
}

func jsonResponse(status int, body any, methods string) events.APIGatewayV2HTTPResponse {
	payload, err := json.Marshal(body)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, err, methods)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    cors.Headers(methods),
		Body:       string(payload),
	}
}

func errorResponse(status int, err error, methods string) events.APIGatewayV2HTTPResponse {
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    cors.Headers(methods),
		Body:       string(payload),
	}
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
