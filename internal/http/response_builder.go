package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSONResponseBuilder assembles a JSON response: status, extra headers and
// a body encoded once on Write.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	data       any
}

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

func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.data = v
	return b
}

// Error sets the {"error": message} body used by every failing endpoint.
func (b *JSONResponseBuilder) Error(message string) *JSONResponseBuilder {
	b.data = errorBody{Error: message}
	return b
}

type errorBody struct {
	Error string `json:"error"`
}

// Write encodes the body before touching the response so an encoding
// failure can still turn into a 500.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	body, err := json.Marshal(b.data)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Data(v).Write(w)
}

func writeError(w http.ResponseWriter, status int, message string) {
	NewJSONResponse().Status(status).Error(message).Write(w)
}
