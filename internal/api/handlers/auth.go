package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/mfinch/myfinance-backend/internal/api/response"
	"github.com/mfinch/myfinance-backend/internal/domain/user"
)

// AuthHandler serves the login endpoint.
type AuthHandler struct {
	users  *user.Service
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users *user.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

type loginRequest struct {
	EmailID  string `json:"emailId"`
	Password string `json:"password"`
}

// Handle dispatches auth requests.
func (h *AuthHandler) Handle(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.Resource == "/user/login" && request.HTTPMethod == http.MethodPost {
		return h.login(ctx, request)
	}
	return response.NotFound("resource not found"), nil
}

func (h *AuthHandler) login(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req loginRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return response.BadRequest("request body is not valid json", request.RequestContext.RequestID), nil
	}

	result, err := h.users.Login(ctx, req.EmailID, req.Password)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(result, request.RequestContext.RequestID), nil
}
