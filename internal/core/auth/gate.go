package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"finance-tracker/internal/domain"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderAPIToken      = "X-API-Token"
)

// Scheme 凭证类型
type Scheme int

const (
	SchemeBearer Scheme = iota + 1
	SchemeAPIToken
)

func (s Scheme) String() string {
	switch s {
	case SchemeBearer:
		return "bearer"
	case SchemeAPIToken:
		return "api_token"
	}
	return "unknown"
}

// Credential is what a request presented, tagged with the scheme that must verify it.
type Credential struct {
	Scheme Scheme
	Token  string
}

// Mode 路由接受哪些凭证
type Mode int

const (
	BearerOnly Mode = iota
	APITokenOnly
	BearerOrAPIToken
)

// Select picks exactly one credential from the headers. In BearerOrAPIToken
// mode a non-empty X-API-Token wins and the Authorization header is not read.
func Select(h http.Header, mode Mode) Credential {
	apiTok := strings.TrimSpace(h.Get(HeaderAPIToken))
	switch mode {
	case APITokenOnly:
		return Credential{Scheme: SchemeAPIToken, Token: apiTok}
	case BearerOrAPIToken:
		if apiTok != "" {
			return Credential{Scheme: SchemeAPIToken, Token: apiTok}
		}
	}
	return Credential{Scheme: SchemeBearer, Token: bearerToken(h.Get(HeaderAuthorization))}
}

// bearerToken strips an optional "Bearer " prefix.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		header = header[7:]
	}
	return strings.TrimSpace(header)
}

// Credentials is the part of the credential store the gate reads.
type Credentials interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByAPIToken(ctx context.Context, token string) (*domain.User, error)
}

type Gate struct {
	jwt   *JWTer
	users Credentials
}

func NewGate(j *JWTer, users Credentials) *Gate { return &Gate{jwt: j, users: users} }

// Authenticate resolves a credential to a principal. Failures are *Error values,
// or *ServerError when the store could not be read.
func (g *Gate) Authenticate(ctx context.Context, cred Credential) (domain.Principal, error) {
	switch cred.Scheme {
	case SchemeAPIToken:
		return g.verifyAPIToken(ctx, cred.Token)
	case SchemeBearer:
		return g.verifyBearer(ctx, cred.Token)
	}
	return domain.Principal{}, ErrNoToken
}

func (g *Gate) verifyBearer(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, ErrNoToken
	}
	claims, err := g.jwt.Parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, ErrTokenExpired
		}
		return domain.Principal{}, ErrInvalidToken
	}
	// 签名有效但用户已删除 → 视为吊销
	u, err := g.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Principal{}, ErrUserNotFound
	}
	if err != nil {
		return domain.Principal{}, &ServerError{Err: err}
	}
	return u.Principal(), nil
}

func (g *Gate) verifyAPIToken(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, ErrNoAPIToken
	}
	u, err := g.users.FindByAPIToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Principal{}, ErrInvalidAPIToken
	}
	if err != nil {
		return domain.Principal{}, &ServerError{Err: err}
	}
	return u.Principal(), nil
}
