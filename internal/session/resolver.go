// Package session resolves the current job seeker from the stored session
// credential.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/containerd/errdefs"

	"github.com/ashureev/joblink/internal/credential"
	"github.com/ashureev/joblink/internal/domain"
	"github.com/ashureev/joblink/internal/metrics"
)

// MePath is the identity endpoint resource.
const MePath = "/api/auth/me"

const maxBodyBytes = 1 << 20

// Resolution outcomes used as metric labels.
const (
	OutcomeOK              = "ok"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeNotFound        = "not_found"
	OutcomeUnavailable     = "unavailable"
	OutcomeInvalid         = "invalid_response"
	OutcomeCanceled        = "canceled"
	OutcomeError           = "error"
)

// Resolver fetches the current user from the identity endpoint.
type Resolver struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
}

// NewResolver creates a resolver for the identity service at baseURL.
// A nil client uses a client with a 10 second timeout.
func NewResolver(baseURL string, client *http.Client, m *metrics.Metrics) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		metrics: m,
	}
}

type meResponse struct {
	User *domain.User `json:"user"`
}

// Resolve returns the current user or nil. Failures are logged and counted,
// never returned: the dashboard renders without an identity instead.
func (r *Resolver) Resolve(ctx context.Context, store credential.Store) *domain.User {
	token := ""
	if store != nil {
		token = store.Get(credential.TokenKey)
	}

	user, err := r.Fetch(ctx, token)
	outcome := Outcome(err)
	r.metrics.ObserveResolution(outcome)
	if err != nil {
		slog.Warn("Session resolution failed", "outcome", outcome, "error", err)
		return nil
	}
	slog.Debug("Session resolved", "user_id", user.ID)
	return user
}

// Fetch issues one authenticated request to the identity endpoint. A missing
// token is still sent; the identity service decides what it means.
func (r *Resolver) Fetch(ctx context.Context, token string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+MePath, nil)
	if err != nil {
		return nil, fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("identity request: %w", ctx.Err())
		}
		return nil, fmt.Errorf("identity request: %w: %w", errdefs.ErrUnavailable, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("Failed to close identity response body", "error", closeErr)
		}
	}()

	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read identity response: %w: %w", errdefs.ErrUnavailable, err)
	}

	var payload meResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode identity response: %w: %w", errdefs.ErrInvalidArgument, err)
	}
	if payload.User == nil {
		return nil, fmt.Errorf("identity response has no user: %w", errdefs.ErrInvalidArgument)
	}
	return payload.User, nil
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("identity endpoint returned %d: %w", code, errdefs.ErrUnauthenticated)
	case code == http.StatusNotFound:
		return fmt.Errorf("identity endpoint returned %d: %w", code, errdefs.ErrNotFound)
	case code >= 500:
		return fmt.Errorf("identity endpoint returned %d: %w", code, errdefs.ErrUnavailable)
	default:
		return fmt.Errorf("identity endpoint returned %d: %w", code, errdefs.ErrUnknown)
	}
}

// Outcome maps a Fetch error to a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, errdefs.ErrUnauthenticated):
		return OutcomeUnauthenticated
	case errdefs.IsNotFound(err):
		return OutcomeNotFound
	case errdefs.IsUnavailable(err):
		return OutcomeUnavailable
	case errdefs.IsInvalidArgument(err):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
