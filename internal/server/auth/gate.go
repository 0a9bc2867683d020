package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/logging"
	"github.com/dmitrijs2005/patrimonio/internal/server/metrics"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
)

// DefaultHTTPPublicPrefixes lists HTTP paths served without authentication.
var DefaultHTTPPublicPrefixes = []string{
	"/api/auth/",
	"/healthz",
	"/readyz",
	"/metrics",
	"/static/",
	"/favicon.ico",
	"/error",
}

// DefaultGRPCPublicPrefixes lists gRPC full method names served without
// authentication.
var DefaultGRPCPublicPrefixes = []string{
	"/grpc.health.v1.Health/",
}

// CredentialDirectory resolves a username to a principal.
// A miss is reported as common.ErrPrincipalNotFound.
type CredentialDirectory interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Gate turns an Authorization header into a request identity. It never
// rejects a request: every failure ends as "no identity" and protected
// handlers are responsible for refusing anonymous callers.
type Gate struct {
	tokens    *TokenService
	directory CredentialDirectory
	public    []string
	logger    logging.Logger
}

func NewGate(tokens *TokenService, directory CredentialDirectory, publicPrefixes []string, logger logging.Logger) *Gate {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Gate{
		tokens:    tokens,
		directory: directory,
		public:    append([]string(nil), publicPrefixes...),
		logger:    logger.With("module", "auth_gate"),
	}
}

// ShouldBypass reports whether path matches the public allow-list.
func (g *Gate) ShouldBypass(path string) bool {
	for _, p := range g.public {
		if strings.HasPrefix(path, p) {
			metrics.AuthAttemptsTotal.WithLabelValues(metrics.OutcomeBypass).Inc()
			return true
		}
	}
	return false
}

// Authenticate resolves the principal behind authorizationHeader.
// It returns (nil, false) for a missing or non-Bearer header, a malformed
// token, an unknown subject, a directory failure or an invalid token.
func (g *Gate) Authenticate(ctx context.Context, authorizationHeader string) (*models.User, bool) {
	token, found := strings.CutPrefix(authorizationHeader, common.BearerPrefix)
	if !found || token == "" {
		return g.reject(ctx, metrics.OutcomeMissingHeader, nil)
	}

	subject, err := g.tokens.ExtractSubject(token)
	if err != nil {
		return g.reject(ctx, metrics.OutcomeMalformed, err)
	}

	user, err := g.directory.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrPrincipalNotFound) {
			return g.reject(ctx, metrics.OutcomeUnknownSubject, err)
		}
		return g.reject(ctx, metrics.OutcomeDirectoryError, err)
	}

	if err := g.tokens.Verify(token, user); err != nil {
		return g.reject(ctx, metrics.OutcomeInvalid, err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues(metrics.OutcomeAuthenticated).Inc()
	return user, true
}

// Attach authenticates and stores the principal in ctx. A context that
// already carries an identity is returned as is.
func (g *Gate) Attach(ctx context.Context, authorizationHeader string) context.Context {
	if _, ok := UserFromContext(ctx); ok {
		return ctx
	}
	if user, ok := g.Authenticate(ctx, authorizationHeader); ok {
		return WithUser(ctx, user)
	}
	return ctx
}

func (g *Gate) reject(ctx context.Context, outcome string, err error) (*models.User, bool) {
	metrics.AuthAttemptsTotal.WithLabelValues(outcome).Inc()
	if err != nil {
		g.logger.Debug(ctx, "request not authenticated", "reason", outcome, "error", err)
	} else {
		g.logger.Debug(ctx, "request not authenticated", "reason", outcome)
	}
	return nil, false
}
