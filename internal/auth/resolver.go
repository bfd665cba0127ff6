package auth

import (
	"fmt"
	"strings"

	"chat-server/internal/models"
)

// UserGetter is the slice of the store the resolver needs.
type UserGetter interface {
	GetUser(id string) (models.User, error)
}

// Resolver maps a connection-supplied credential to a user identity.
type Resolver interface {
	Resolve(token string) (models.User, error)
}

// TokenResolver verifies a JWT and loads the matching user record.
type TokenResolver struct {
	tokens Tokens
	users  UserGetter
}

func NewTokenResolver(tokens Tokens, users UserGetter) TokenResolver {
	return TokenResolver{tokens: tokens, users: users}
}

func (r TokenResolver) Resolve(token string) (models.User, error) {
	token = strings.TrimPrefix(token, "Bearer ")
	claims, err := r.tokens.Validate(token)
	if err != nil {
		return models.User{}, err
	}
	user, err := r.users.GetUser(claims.UserID)
	if err != nil {
		return models.User{}, fmt.Errorf("resolving user %s: %w", claims.UserID, err)
	}
	return user, nil
}
