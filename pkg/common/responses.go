package common

import (
	"encoding/json"
	"net/http"
)

// Envelope is the shape every admin API response is wrapped in.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Page is a list response: the envelope plus its pagination block.
type Page[T any] struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message,omitempty"`
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type SuccessResponse struct {
	Status  int         `json:"status"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type ErrorResponse struct {
	Status   int         `json:"status"`
	Message  string      `json:"message"`
	Success  bool        `json:"success"`
	Data     interface{} `json:"data,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

func NewSuccessResponse(data interface{}, message string) SuccessResponse {
	return SuccessResponse{
		Status:  http.StatusOK,
		Success: true,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(message string, data interface{}, status int) ErrorResponse {
	return ErrorResponse{
		Status:  status,
		Success: false,
		Message: message,
		Data:    data,
	}
}

// envelopeHeader is decoded first so success:false bodies can be detected
// without knowing the payload type.
type envelopeHeader struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (h envelopeHeader) text() string {
	if h.Message != "" {
		return h.Message
	}
	return h.Error
}
