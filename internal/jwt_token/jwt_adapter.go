package jwttoken

import (
	authmw "kafkaportal/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) *authmw.JWTClaims {
	mc := &authmw.JWTClaims{
		UserID:   claims.UserID,
		Username: claims.Username,
		JTI:      claims.ID, // JWT ID for revocation tracking
	}
	if claims.ExpiresAt != nil {
		mc.ExpiresAt = claims.ExpiresAt.Time
	}
	return mc
}

type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
