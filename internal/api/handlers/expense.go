package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/mfinch/myfinance-backend/internal/api/middleware"
	"github.com/mfinch/myfinance-backend/internal/api/response"
	"github.com/mfinch/myfinance-backend/internal/domain/expense"
)

// tagYearsBack is how many years of tags a tag listing covers by default.
const tagYearsBack = 5

// ExpenseHandler routes expense API requests to the lifecycle service.
type ExpenseHandler struct {
	service *expense.Service
	logger  *slog.Logger
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(service *expense.Service, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{service: service, logger: logger}
}

// Handle dispatches on the API Gateway resource pattern and method.
func (h *ExpenseHandler) Handle(ctx context.Context, logger *slog.Logger, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return response.Unauthorized("caller identity is missing", request.RequestContext.RequestID), nil
	}

	v, err := expense.VariantFor(expense.BelongsTo(request.PathParameters["belongsTo"]))
	if err != nil {
		return response.BadRequest("unknown expense type", request.RequestContext.RequestID), nil
	}

	switch request.Resource {
	case "/expenses/{belongsTo}":
		switch request.HTTPMethod {
		case http.MethodPost:
			return h.upsert(ctx, principal, v, request)
		case http.MethodGet:
			return h.list(ctx, principal, v, request)
		}
	case "/expenses/{belongsTo}/tags":
		if request.HTTPMethod == http.MethodGet {
			return h.tags(ctx, principal, v, request)
		}
	case "/expenses/{belongsTo}/id/{expenseId}":
		switch request.HTTPMethod {
		case http.MethodGet:
			return h.get(ctx, principal, v, request)
		case http.MethodDelete:
			return h.delete(ctx, principal, v, request)
		}
	case "/expenses/{belongsTo}/id/{expenseId}/status/{status}":
		if request.HTTPMethod == http.MethodPost {
			return h.updateStatus(ctx, principal, v, request)
		}
	}
	return response.NotFound("resource not found"), nil
}

func (h *ExpenseHandler) upsert(ctx context.Context, principal middleware.Principal, v expense.Variant, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req expense.Resource
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return response.BadRequest("request body is not valid json", request.RequestContext.RequestID), nil
	}

	result, err := h.service.Upsert(ctx, principal.UserID, v, &req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	if result.ReceiptWarning != "" {
		return response.SuccessWithWarning(result.Resource, result.ReceiptWarning, status, request.RequestContext.RequestID), nil
	}
	return response.Success(result.Resource, status, request.RequestContext.RequestID), nil
}

func (h *ExpenseHandler) get(ctx context.Context, principal middleware.Principal, v expense.Variant, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	resource, err := h.service.Get(ctx, principal.UserID, v, request.PathParameters["expenseId"])
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(resource, request.RequestContext.RequestID), nil
}

func (h *ExpenseHandler) list(ctx context.Context, principal middleware.Principal, v expense.Variant, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	filter := expense.ListFilter{
		Status:    expense.Status(request.QueryStringParameters["status"]),
		StartDate: request.QueryStringParameters["startDate"],
		EndDate:   request.QueryStringParameters["endDate"],
		Ascending: request.QueryStringParameters["order"] == "asc",
	}
	if raw := request.QueryStringParameters["limit"]; raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || limit <= 0 {
			return response.BadRequest("limit must be a positive integer", request.RequestContext.RequestID), nil
		}
		filter.Limit = int32(limit)
	}

	resources, err := h.service.List(ctx, principal.UserID, v, filter)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.SuccessWithPagination(resources, &response.Pagination{Total: len(resources)}, http.StatusOK, request.RequestContext.RequestID), nil
}

func (h *ExpenseHandler) tags(ctx context.Context, principal middleware.Principal, v expense.Variant, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	endYear := time.Now().UTC().Year()
	startYear := endYear - tagYearsBack
	var err error
	if raw := request.QueryStringParameters["startYear"]; raw != "" {
		if startYear, err = strconv.Atoi(raw); err != nil {
			return response.BadRequest("startYear must be a year", request.RequestContext.RequestID), nil
		}
	}
	if raw := request.QueryStringParameters["endYear"]; raw != "" {
		if endYear, err = strconv.Atoi(raw); err != nil {
			return response.BadRequest("endYear must be a year", request.RequestContext.RequestID), nil
		}
	}

	tags, err := h.service.TagList(ctx, principal.UserID, v, startYear, endYear)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return response.OK(tags, request.RequestContext.RequestID), nil
}

func (h *ExpenseHandler) delete(ctx context.Context, principal middleware.Principal, v expense.Variant, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	result, err := h.service.Delete(ctx, principal.UserID, v, request.PathParameters["expenseId"])
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	if result.ReceiptWarning != "" {
		return response.SuccessWithWarning(result.Resource, result.ReceiptWarning, http.StatusOK, request.RequestContext.RequestID), nil
	}
	return response.OK(result.Resource, request.RequestContext.RequestID), nil
}

func (h *ExpenseHandler) updateStatus(ctx context.Context, principal middleware.Principal, v expense.Variant, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	result, err := h.service.UpdateStatus(ctx, principal.UserID, v,
		request.PathParameters["expenseId"],
		expense.Status(request.PathParameters["status"]))
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	if result.ReceiptWarning != "" {
		return response.SuccessWithWarning(result.Resource, result.ReceiptWarning, http.StatusOK, request.RequestContext.RequestID), nil
	}
	return response.OK(result.Resource, request.RequestContext.RequestID), nil
}
