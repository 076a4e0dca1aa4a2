package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	jwt "github.com/golang-jwt/jwt/v5"

	"celebmint/observability/logging"
)

type AuthConfig struct {
	HMACSecret string
	Issuer     string
	ClockSkew  time.Duration
}

type contextKey string

const contextKeyCaller contextKey = "celebmint.caller"

var (
	errNoSecret      = errors.New("auth secret not configured")
	errBadSubject    = errors.New("subject is not an address")
	errMissingBearer = errors.New("missing bearer token")
)

// Authenticator resolves the calling address from an HS256 bearer token. The
// token subject is the caller's hex address.
type Authenticator struct {
	cfg    AuthConfig
	secret []byte
	logger *slog.Logger
}

func NewAuthenticator(cfg AuthConfig, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ClockSkew <= 0 {
		cfg.ClockSkew = 2 * time.Minute
	}
	return &Authenticator{
		cfg:    cfg,
		secret: []byte(strings.TrimSpace(cfg.HMACSecret)),
		logger: logger,
	}
}

// Middleware rejects requests without a valid token and stores the caller in
// the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		caller, err := a.Authenticate(header)
		if err != nil {
			a.logger.Warn("auth: token rejected",
				slog.String("route", r.URL.Path),
				logging.MaskField("authorization", header),
				slog.Any("reason", err))
			writeUnauthorized(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
}

// Authenticate validates an Authorization header value.
func (a *Authenticator) Authenticate(header string) (common.Address, error) {
	tokenString := extractBearer(header)
	if tokenString == "" {
		return common.Address{}, errMissingBearer
	}
	if len(a.secret) == 0 {
		return common.Address{}, errNoSecret
	}
	opts := []jwt.ParserOption{
		jwt.WithLeeway(a.cfg.ClockSkew),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.Issuer))
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return common.Address{}, err
	}
	if !token.Valid {
		return common.Address{}, errors.New("token invalid")
	}
	subject := strings.TrimSpace(claims.Subject)
	if !common.IsHexAddress(subject) {
		return common.Address{}, errBadSubject
	}
	return common.HexToAddress(subject), nil
}

// IssueToken signs a caller token valid for ttl.
func IssueToken(secret, issuer string, caller common.Address, ttl time.Duration, now time.Time) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", errNoSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	claims := jwt.RegisteredClaims{
		Subject:   caller.Hex(),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// WithCaller stores the authenticated caller in ctx.
func WithCaller(ctx context.Context, caller common.Address) context.Context {
	return context.WithValue(ctx, contextKeyCaller, caller)
}

// CallerFromContext returns the authenticated caller.
func CallerFromContext(ctx context.Context) (common.Address, bool) {
	caller, ok := ctx.Value(contextKeyCaller).(common.Address)
	return caller, ok
}

func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	message := "invalid token"
	if errors.Is(err, errMissingBearer) {
		message = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"` + message + `"}}`))
}
