package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"university-form-agent/internal/endpoint"
	"university-form-agent/internal/pkg/response"
	"university-form-agent/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

type Endpoints interface {
	Chat(ctx context.Context, body []byte) endpoint.Reply
	Generate(ctx context.Context, body []byte) endpoint.Reply
}

// Handler adapts API Gateway proxy events to the form assistant endpoints.
type Handler struct {
	endpoints Endpoints
	logger    *zap.Logger
}

func NewHandler(e Endpoints, logger *zap.Logger) (*Handler, error) {
	if e == nil {
		return nil, errors.New("handler: endpoints must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{endpoints: e, logger: logger}, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	reqLogger := h.logger.With(zap.String("correlation_id", correlationID))
	ctx = ctxzap.ToContext(ctx, reqLogger)
	reqLogger.Info("handle API Gateway request",
		zap.String("method", req.HTTPMethod),
		zap.String("path", req.Path),
	)

	headers := map[string]string{correlationHeader: correlationID}

	route := strings.TrimRight(req.Path, "/")
	switch {
	case req.HTTPMethod == http.MethodGet && route == "":
		headers["Content-Type"] = "text/html; charset=utf-8"
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: headers, Body: string(endpoint.LandingPage)}, nil
	case req.HTTPMethod == http.MethodGet && route == "/health":
		return jsonResponse(ctx, headers, endpoint.Reply{Status: http.StatusOK, Body: endpoint.Health})
	case req.HTTPMethod == http.MethodPost && route == "/chat":
		body, err := requestBody(req)
		if err != nil {
			return jsonResponse(ctx, headers, badBody())
		}
		return jsonResponse(ctx, headers, h.endpoints.Chat(ctx, body))
	case req.HTTPMethod == http.MethodPost && route == "/generate":
		body, err := requestBody(req)
		if err != nil {
			return jsonResponse(ctx, headers, badBody())
		}
		return jsonResponse(ctx, headers, h.endpoints.Generate(ctx, body))
	default:
		return jsonResponse(ctx, headers, endpoint.Reply{
			Status: http.StatusNotFound,
			Body:   endpoint.ErrorBody{Error: "route not found", Code: string(usecase.ErrorInvalidInput)},
		})
	}
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	return base64.StdEncoding.DecodeString(req.Body)
}

func badBody() endpoint.Reply {
	return endpoint.Reply{
		Status: http.StatusBadRequest,
		Body:   endpoint.ErrorBody{Error: "invalid request body", Code: string(usecase.ErrorInvalidInput)},
	}
}

func jsonResponse(ctx context.Context, headers map[string]string, reply endpoint.Reply) (events.APIGatewayProxyResponse, error) {
	headers["Content-Type"] = "application/json"
	body, err := response.Marshal(reply.Body)
	if err != nil {
		ctxzap.Error(ctx, "encode response", zap.Error(err))
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    headers,
			Body:       `{"error":"internal error","code":"INTERNAL_ERROR"}`,
		}, nil
	}
	return events.APIGatewayProxyResponse{StatusCode: reply.Status, Headers: headers, Body: body}, nil
}

// headerValue looks a header up case-insensitively; API Gateway preserves
// whatever case the client sent.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
