package security

import (
	"errors"
	"time"

	"coursehub/internal/platform/config"
	"coursehub/internal/platform/idgen"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

func GenerateToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": idgen.FormatID(userID),
		"exp":     time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// GetUserIDFromClaims reads the principal. Ids travel as strings since
// snowflake values overflow JSON numbers.
func GetUserIDFromClaims(claims jwt.MapClaims) (int64, error) {
	raw, ok := claims["user_id"].(string)
	if !ok {
		return 0, errors.New("user_id claim is missing or not a string")
	}
	id, err := idgen.ParseID(raw)
	if err != nil || id <= 0 {
		return 0, errors.New("user_id claim is not a valid id")
	}
	return id, nil
}
