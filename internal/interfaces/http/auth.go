package httpinterface

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt"
)

const issuer = "bondingd"

type callerKey struct{}

// IssueToken returns a bearer token identifying account, signed with
// secret. A zero ttl issues a token that never expires.
func IssueToken(
	secret []byte, account common.Address, ttl time.Duration,
) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Issuer:   issuer,
		Subject:  account.Hex(),
		IssuedAt: now.Unix(),
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseToken returns the account identified by the given bearer token.
func parseToken(secret []byte, tokenString string) (common.Address, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %s", t.Header["alg"])
			}
			return secret, nil
		},
	)
	if err != nil {
		return common.Address{}, err
	}
	if !token.Valid || claims.Issuer != issuer {
		return common.Address{}, fmt.Errorf("invalid token")
	}
	if !common.IsHexAddress(claims.Subject) {
		return common.Address{}, fmt.Errorf("invalid token subject")
	}
	return common.HexToAddress(claims.Subject), nil
}

// authenticate stores the caller identified by the bearer token, if any, in
// the request context. Requests with a malformed or invalid token are
// rejected.
func authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if len(header) <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				writeError(w, r, ErrUnauthenticated)
				return
			}
			caller, err := parseToken(secret, tokenString)
			if err != nil {
				writeError(w, r, fmt.Errorf("%w: %s", ErrUnauthenticated, err))
				return
			}

			ctx := context.WithValue(r.Context(), callerKey{}, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func callerFromContext(ctx context.Context) (common.Address, error) {
	caller, ok := ctx.Value(callerKey{}).(common.Address)
	if !ok {
		return common.Address{}, ErrUnauthenticated
	}
	return caller, nil
}
