package services

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
	"github.com/upskillworks/roadmap-backend/internal/requestdata"
)

// AuthService verifies bearer tokens minted by the external identity
// system and puts the actor on the request context. Account
// management, sessions and password handling all live outside this
// service.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	log       *logger.Logger
	jwtSecret []byte
}

func NewAuthService(baseLog *logger.Logger, jwtSecret string) AuthService {
	return &authService{
		log:       baseLog.With("service", "AuthService"),
		jwtSecret: []byte(jwtSecret),
	}
}

type actorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := &actorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("%w: invalid token", pkgerrors.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("%w: token subject is not a user id", pkgerrors.ErrUnauthorized)
	}

	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Role:        claims.Role,
	}), nil
}
