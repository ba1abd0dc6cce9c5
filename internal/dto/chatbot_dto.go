package dto

import (
	"errors"

	"trading-chat-be/pkg/spreadsheet"
)

// --- Chat ---

type SendChatRequest struct {
	UserId  string `json:"userId" validate:"required"`
	Message string `json:"message"` // may be empty, forwarded as-is
}

type SendChatResponse struct {
	Response string `json:"response"`
}

type ChatErrorResponse struct {
	Error string `json:"error"`
}

// --- History ---

type ChatMessageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GetChatHistoryResponse struct {
	Messages []ChatMessageDTO `json:"messages"`
}

// --- Upload ---

type UploadFinancialDataRequest struct {
	UserId   string `json:"userId" validate:"required"`
	FileName string `json:"fileName"`
}

type UploadFinancialDataResponse struct {
	Message      string `json:"message"`
	DataReceived bool   `json:"dataReceived"`
}

type UploadErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// --- Financial data ---

type GetFinancialDataResponse struct {
	Data []spreadsheet.Record `json:"data"`
}

type NotFoundResponse struct {
	Message string `json:"message"`
}

// --- Errors ---

var ErrFinancialDataMissing = errors.New("no financial data found for this user")

// UpstreamError wraps a failure of the completion service. Its message is
// never sent to the client.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Op + ": completion failed: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
