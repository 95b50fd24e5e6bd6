package models

import "github.com/golang-jwt/jwt/v5"

// Claims represents the JWT payload issued by the identity collaborator.
// The workflow core trusts these claims and never re-verifies them.
type Claims struct {
	UserID    int64       `json:"userId"`
	Profile   UserProfile `json:"profile"`
	StoreCode string      `json:"storeCode"`
	jwt.RegisteredClaims
}
