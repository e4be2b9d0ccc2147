package service

import (
	"context"
	"errors"
	"time"

	"municipal-tasks/internal/core/domain/entities"
	"municipal-tasks/internal/core/ports"

	"go.uber.org/zap"
)

const (
	DefaultSessionAttempts     = 30
	DefaultSessionInitialDelay = 100 * time.Millisecond

	sessionBackoffFactor = 1.1
	sessionBackoffCap    = 2 * time.Second
)

// SessionGate blocks live subscriptions until an authenticated session is
// confirmed. Opening a watch before authentication settles is the failure
// mode this component exists to prevent.
type SessionGate struct {
	source ports.SessionSource
	sleep  func(ctx context.Context, d time.Duration) bool
	log    *zap.Logger
}

func NewSessionGate(source ports.SessionSource, log *zap.Logger) (*SessionGate, error) {
	if source == nil {
		return nil, errors.New("session source is nil")
	}
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	return &SessionGate{
		source: source,
		sleep:  sleepContext,
		log:    log,
	}, nil
}

// WaitForSession polls the session source up to maxAttempts times, sleeping
// with multiplicative backoff from initialDelay (capped per attempt) between
// tries. It returns nil when the attempts are exhausted or the context ends;
// callers must treat nil as "no session", not as an error, and must not retry
// on their own.
func (g *SessionGate) WaitForSession(ctx context.Context, maxAttempts int, initialDelay time.Duration) *entities.Session {
	if maxAttempts <= 0 {
		maxAttempts = DefaultSessionAttempts
	}
	if initialDelay <= 0 {
		initialDelay = DefaultSessionInitialDelay
	}

	delay := initialDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		session, err := g.source.Current(ctx)
		if err == nil && session != nil {
			g.log.Debug("session gate: session confirmed",
				zap.String("uid", session.UID), zap.Int("attempt", attempt))
			return session
		}
		if err != nil {
			g.log.Debug("session gate: attempt failed",
				zap.Int("attempt", attempt), zap.Error(err))
		}

		if !g.sleep(ctx, delay) {
			return nil
		}
		delay = time.Duration(float64(delay) * sessionBackoffFactor)
		if delay > sessionBackoffCap {
			delay = sessionBackoffCap
		}
	}

	g.log.Warn("session gate: attempts exhausted", zap.Int("attempts", maxAttempts))
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
