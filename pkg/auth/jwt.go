package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid table token")
	ErrTableMismatch = errors.New("token does not belong to this table")
)

// TableClaims binds a client to the table it created.
type TableClaims struct {
	TableID string `json:"table_id"`
	jwt.RegisteredClaims
}

// GenerateTableToken signs an HS256 token for tableID valid for ttl.
func GenerateTableToken(secret, tableID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &TableClaims{
		TableID: tableID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tableID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateTableToken checks the signature and expiry and returns the claims.
func ValidateTableToken(secret, tokenString string) (*TableClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TableClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*TableClaims)
	if !ok || !token.Valid || claims.TableID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// AuthorizeTable validates the token and checks it was issued for tableID.
func AuthorizeTable(secret, tokenString, tableID string) (*TableClaims, error) {
	claims, err := ValidateTableToken(secret, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TableID != tableID {
		return nil, ErrTableMismatch
	}
	return claims, nil
}
