/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: Invalid Argument Errors (rejected locally before any mutation)
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005

	// ErrInvalidPagination indicates that page or page size parameters were not positive.
	ErrInvalidPagination = 1006

	// ErrInvalidConversationPeers indicates that a conversation id was requested for
	// an empty identity, an identity containing reserved characters, or a user and themselves.
	ErrInvalidConversationPeers = 1007

	// ErrMessageContentEmpty indicates that a chat message body was missing or empty.
	ErrMessageContentEmpty = 1008

	// ErrRoomNameInvalid indicates that a room operation was attempted with an empty room name.
	ErrRoomNameInvalid = 1009
)

// 2xxx: Resource Lookup Errors
const (
	// ErrUserNotFound indicates that the referenced user account does not exist.
	ErrUserNotFound = 2001

	// ErrMessageNotFound indicates that the referenced message id does not exist.
	ErrMessageNotFound = 2002
)

// 3xxx: Session and Security Errors
const (
	// ErrInvalidCredential indicates that the auth credential could not be resolved to an identity.
	ErrInvalidCredential = 3001

	// ErrUnauthorized indicates that the request lacks a valid identity.
	ErrUnauthorized = 3002

	// ErrNotAuthenticated indicates a realtime operation that requires a prior successful auth event.
	ErrNotAuthenticated = 3003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorage indicates a persistence layer failure. The outcome of the attempted
	// write is ambiguous; callers must re-query rather than blindly resubmit.
	ErrStorage = 5001
)
