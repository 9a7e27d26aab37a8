package jwt

import (
	"github.com/mountain-chan/security-chat-backend/internal/pkg/errs"
)

// Resolver decodes opaque auth credentials into stable user identifiers.
// It is the identity collaborator consumed by the realtime presence registry.
type Resolver struct {
	secretKey string
}

// NewResolver returns a Resolver validating tokens against the given secret.
func NewResolver(secretKey string) *Resolver {
	return &Resolver{secretKey: secretKey}
}

// Resolve validates the credential and returns the user identity it carries.
// Any parse or validation failure is reported as an invalid-credential error;
// the caller must not bind the connection in that case.
func (r *Resolver) Resolve(credential string) (string, error) {
	payload, err := ParseToken(credential, r.secretKey)
	if err != nil {
		return "", errs.NewError(errs.ErrInvalidCredential)
	}

	if payload.Identity == "" {
		return "", errs.NewError(errs.ErrInvalidCredential)
	}

	return payload.Identity, nil
}
