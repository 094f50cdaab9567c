package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Annany2002/nebula-admin/internal/admin"
	"github.com/Annany2002/nebula-admin/internal/domain"
	"github.com/Annany2002/nebula-admin/internal/i18n"
	"github.com/Annany2002/nebula-admin/internal/storage"
)

const (
	CodeUserNotFound = "user_not_found"
	CodeNotAnAdmin   = "not_an_admin"
	CodeTokenError   = "token_error"
)

// Authenticator signs admin users in and resolves them from request headers.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)
	Authenticate(ctx context.Context, header string) (*domain.AdminUser, error)
}

// LoginResult is a freshly issued token and its owner.
type LoginResult struct {
	Token string
	User  *domain.AdminUser
}

// JWTAuthenticator checks passwords against the admin_users table and issues
// HS256 tokens.
type JWTAuthenticator struct {
	db         *sql.DB
	secret     string
	expiration time.Duration
}

// NewJWTAuthenticator builds a JWTAuthenticator.
func NewJWTAuthenticator(db *sql.DB, secret string, expiration time.Duration) *JWTAuthenticator {
	return &JWTAuthenticator{db: db, secret: secret, expiration: expiration}
}

func userNotFound() *admin.APIError {
	return admin.NewAPIError(http.StatusUnauthorized, CodeUserNotFound, i18n.T(CodeUserNotFound))
}

func tokenError(err error) *admin.APIError {
	return admin.NewAPIError(http.StatusUnauthorized, CodeTokenError, i18n.T(CodeTokenError)).WithCause(err)
}

func internalError(err error) *admin.APIError {
	return admin.NewAPIError(http.StatusInternalServerError, admin.CodeInternal, i18n.T(admin.CodeInternal)).WithCause(err)
}

// Login verifies the password and issues a token. Unknown users and wrong
// passwords look the same to the caller.
func (a *JWTAuthenticator) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := storage.FindAdminUserByUsername(ctx, a.db, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return LoginResult{}, userNotFound()
	}
	if err != nil {
		return LoginResult{}, internalError(err)
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		customLog.Warnf("Auth: Failed login for %s", username)
		return LoginResult{}, userNotFound()
	}
	if !user.IsAdmin {
		return LoginResult{}, admin.NewAPIError(http.StatusForbidden, CodeNotAnAdmin, i18n.T(CodeNotAnAdmin))
	}

	token, err := GenerateJWT(user.Username, a.secret, a.expiration)
	if err != nil {
		return LoginResult{}, internalError(err)
	}
	customLog.Printf("Auth: User %s logged in", user.Username)
	return LoginResult{Token: token, User: user}, nil
}

// Authenticate resolves an Authorization header of the form
// "Token <jwt>" or "Bearer <jwt>".
func (a *JWTAuthenticator) Authenticate(ctx context.Context, header string) (*domain.AdminUser, error) {
	token, ok := parseAuthorization(header)
	if !ok {
		return nil, tokenError(ErrTokenMalformed)
	}
	username, err := ValidateJWT(token, a.secret)
	if err != nil {
		return nil, tokenError(err)
	}

	user, err := storage.FindAdminUserByUsername(ctx, a.db, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, userNotFound()
	}
	if err != nil {
		return nil, internalError(err)
	}
	if !user.IsAdmin {
		return nil, userNotFound()
	}
	return user, nil
}

func parseAuthorization(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return parts[1], true
	default:
		return "", false
	}
}
