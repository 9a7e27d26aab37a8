/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: Invalid Argument Errors
	ErrInvalidParams:            {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:     {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:        {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:       {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:        {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrInvalidPagination:        {Code: ErrInvalidPagination, Message: "Page and page size must be positive.", Status: http.StatusBadRequest},
	ErrInvalidConversationPeers: {Code: ErrInvalidConversationPeers, Message: "Invalid conversation participants.", Status: http.StatusBadRequest},
	ErrMessageContentEmpty:      {Code: ErrMessageContentEmpty, Message: "Message content is required.", Status: http.StatusBadRequest},
	ErrRoomNameInvalid:          {Code: ErrRoomNameInvalid, Message: "Room name is required.", Status: http.StatusBadRequest},

	// 2xxx: Resource Lookup Errors
	ErrUserNotFound:    {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},
	ErrMessageNotFound: {Code: ErrMessageNotFound, Message: "Message not found.", Status: http.StatusNotFound},

	// 3xxx: Session and Security Errors
	ErrInvalidCredential: {Code: ErrInvalidCredential, Message: "Invalid or expired credential.", Status: http.StatusUnauthorized},
	ErrUnauthorized:      {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrNotAuthenticated:  {Code: ErrNotAuthenticated, Message: "Authenticate before sending messages.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorage: {Code: ErrStorage, Message: "Message could not be saved. Please check and retry.", Status: http.StatusInternalServerError},
}
