package security

import (
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type CrewIdentity struct {
	Id             string
	UserName       string
	Email          string
	OrganizationId string
	Role           string
}

// IdentityClaims includes Identity and standard JWT claims

type Identity struct {
	ID             string `json:"nameid"`
	UniqueName     string `json:"unique_name"`
	Email          string `json:"email"`
	OrganizationID string `json:"orgid"`
	Role           string `json:"role"`
}

type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

func CreateIdentityToken(identity *CrewIdentity, base64Secret string, expiresInSeconds int64) (string, error) {
	secretBytes, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return "", err
	}
	claims := IdentityClaims{
		Identity: Identity{
			ID:             identity.Id,
			UniqueName:     identity.UserName,
			Email:          identity.Email,
			OrganizationID: identity.OrganizationId,
			Role:           identity.Role,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "crewtime",
			Audience:  []string{"*.crewtime.app"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiresInSeconds) * time.Second)),
		},
	}

	// Use HS256 signing method (symmetric key)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secretBytes))
}
