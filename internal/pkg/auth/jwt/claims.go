package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for the chat backend.
// The identity claim name matches the tokens issued by the account service, so a token
// minted there resolves here without translation.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// Identity is the stable user identifier of the token holder.
	Identity string `json:"identity"`
}
