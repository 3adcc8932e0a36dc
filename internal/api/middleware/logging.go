package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// LoggingMiddleware is a middleware for logging requests and responses
type LoggingMiddleware struct{}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware() LoggingMiddleware {
	return LoggingMiddleware{}
}

// Handle handles the logging middleware
func (m LoggingMiddleware) Handle(next APIGatewayHandler) APIGatewayHandler {
	return func(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		startTime := time.Now()

		logRequest(request, logger)

		response, err := next(ctx, logger, request)

		logResponse(response, err, time.Since(startTime), logger)

		return response, err
	}
}

// bodyMaskedResources are routes whose request bodies carry credentials.
var bodyMaskedResources = map[string]bool{
	"/user/login": true,
}

// logRequest logs the request
func logRequest(request events.APIGatewayProxyRequest, logger *slog.Logger) {
	logger.Info("REQUEST",
		"method", request.HTTPMethod,
		"path", request.Path,
		"requestId", request.RequestContext.RequestID,
		"queryParameters", request.QueryStringParameters,
		"headers", maskSensitiveHeaders(request.Headers))

	if request.Body == "" {
		return
	}
	if bodyMaskedResources[request.Resource] {
		logger.Info("REQUEST", "Body", "***")
		return
	}
	logger.Info("REQUEST", "Body", prettyJSON(request.Body))
}

// logResponse logs the response
func logResponse(response events.APIGatewayProxyResponse, err error, duration time.Duration, logger *slog.Logger) {
	if err != nil {
		logger.Info("ERROR", "error", err)
	}

	logger.Info("RESPONSE",
		"status", response.StatusCode,
		"duration", duration,
	)

	if response.Body != "" {
		logger.Info("RESPONSE", "Body", prettyJSON(response.Body))
	}
}

// prettyJSON re-indents a JSON payload for readability, falling back to the
// raw string when the payload is not JSON.
func prettyJSON(raw string) string {
	var body interface{}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return raw
	}
	indented, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return raw
	}
	return string(indented)
}

// maskSensitiveHeaders masks sensitive headers
func maskSensitiveHeaders(headers map[string]string) map[string]string {
	maskedHeaders := make(map[string]string, len(headers))
	for k, v := range headers {
		maskedHeaders[k] = v
	}

	sensitiveHeaders := []string{
		"Authorization",
		"X-Api-Key",
		"Cookie",
	}

	for _, header := range sensitiveHeaders {
		if _, ok := maskedHeaders[header]; ok {
			maskedHeaders[header] = "***"
		}
	}

	return maskedHeaders
}
