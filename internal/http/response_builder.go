package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSONResponseBuilder assembles a JSON response: status, extra headers and
// a body value encoded on Write.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse starts a 200 response.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write encodes the body. An encoding failure after the header is sent can
// only be logged.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)

	if b.body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode JSON response", "error", err, "status_code", b.statusCode)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

type statusBody struct {
	Status string `json:"status"`
}

type createdBody struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// ErrorResponse builds the {"error": message} shape used by every failure.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Body(errorBody{Error: message})
}

func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError hides the cause; callers log it.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "internal server error")
}

func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// SuccessResponse builds {"status":"success"}.
func SuccessResponse() *JSONResponseBuilder {
	return NewJSONResponse().Body(statusBody{Status: "success"})
}

// CreatedResponse builds the 201 reply to a create.
func CreatedResponse(id int64) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusCreated).Body(createdBody{ID: id, Status: "success"})
}
