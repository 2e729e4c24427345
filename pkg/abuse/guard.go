package abuse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"news-thread/internal/apperror"
	"news-thread/internal/observability/logging"
	"news-thread/internal/observability/metrics"
)

// Counter key prefixes shared across handler instances.
const (
	hourKeyPrefix     = "rl:h"
	dayKeyPrefix      = "rl:d"
	failureKeyPrefix  = "failures"
	cooldownKeyPrefix = "cooldown"
)

// localClients are identifiers treated as the local machine; all limits
// are skipped for them so development and tests are never throttled.
var localClients = map[string]struct{}{
	"127.0.0.1": {},
	"::1":       {},
	"localhost": {},
}

// IsLocalClient reports whether ip identifies the local machine.
func IsLocalClient(ip string) bool {
	_, ok := localClients[strings.ToLower(ip)]
	return ok
}

// Guard enforces per-IP quotas and failure cooldowns in front of the
// generation pipeline.
type Guard struct {
	store  CounterStore
	config Config
	logger *slog.Logger
}

// NewGuard creates a Guard. A nil store puts the guard in fail-open
// mode: every request is admitted and failures are not tracked.
func NewGuard(store CounterStore, cfg Config, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{store: store, config: cfg, logger: logger}
}

// Admit decides whether a request from ip may enter the pipeline.
//
// Order of checks: local bypass, active cooldown, hourly quota, daily
// quota. On admission both counters are incremented; the first
// increment in a window sets that counter's expiry, later increments
// leave it untouched so the window does not slide.
func (g *Guard) Admit(ctx context.Context, ip string) error {
	if g.store == nil || IsLocalClient(ip) {
		metrics.RecordAbuseDecision("bypass")
		return nil
	}

	_, inCooldown, err := g.store.Get(ctx, key(cooldownKeyPrefix, ip))
	if err != nil {
		return g.failOpen("cooldown check", err)
	}
	if inCooldown {
		metrics.RecordAbuseDecision("cooldown")
		g.logger.Warn("request rejected by cooldown",
			slog.String("ip_hash", logging.HashIP(ip)))
		return apperror.New(apperror.CodeCooldown,
			"Too many recent failures. Try again in 15 minutes.")
	}

	hourKey := key(hourKeyPrefix, ip)
	dayKey := key(dayKeyPrefix, ip)

	hourly, _, err := g.store.Get(ctx, hourKey)
	if err != nil {
		return g.failOpen("hourly counter read", err)
	}
	daily, _, err := g.store.Get(ctx, dayKey)
	if err != nil {
		return g.failOpen("daily counter read", err)
	}

	if hourly >= int64(g.config.HourlyLimit) {
		return g.reject(ip, "hourly", "Hourly limit exceeded. Try again later.")
	}
	if daily >= int64(g.config.DailyLimit) {
		return g.reject(ip, "daily", "Daily limit exceeded. Try again tomorrow.")
	}

	if n, err := g.store.Incr(ctx, hourKey); err != nil {
		return g.failOpen("hourly counter increment", err)
	} else if n == 1 {
		if err := g.store.Expire(ctx, hourKey, g.config.HourlyWindow); err != nil {
			return g.failOpen("hourly counter expire", err)
		}
	}
	if n, err := g.store.Incr(ctx, dayKey); err != nil {
		return g.failOpen("daily counter increment", err)
	} else if n == 1 {
		if err := g.store.Expire(ctx, dayKey, g.config.DailyWindow); err != nil {
			return g.failOpen("daily counter expire", err)
		}
	}

	metrics.RecordAbuseDecision("allow")
	return nil
}

// RecordFailure counts a pipeline failure against ip. Reaching the
// failure threshold inside the window sets a cooldown flag that outlives
// the failure counter itself.
func (g *Guard) RecordFailure(ctx context.Context, ip string) {
	if g.store == nil || IsLocalClient(ip) {
		return
	}

	failKey := key(failureKeyPrefix, ip)
	n, err := g.store.Incr(ctx, failKey)
	if err != nil {
		g.warnStore("failure counter increment", err)
		return
	}
	if n == 1 {
		if err := g.store.Expire(ctx, failKey, g.config.FailureWindow); err != nil {
			g.warnStore("failure counter expire", err)
		}
	}

	if n >= int64(g.config.FailureThreshold) {
		if err := g.store.Set(ctx, key(cooldownKeyPrefix, ip), 1, g.config.Cooldown); err != nil {
			g.warnStore("cooldown set", err)
			return
		}
		g.logger.Warn("cooldown activated",
			slog.String("ip_hash", logging.HashIP(ip)),
			slog.Int64("failures", n))
	}
}

// ClearFailures resets the failure counter for ip after a successful
// request. An already-set cooldown is left to expire on its own.
func (g *Guard) ClearFailures(ctx context.Context, ip string) {
	if g.store == nil || IsLocalClient(ip) {
		return
	}
	if err := g.store.Delete(ctx, key(failureKeyPrefix, ip)); err != nil {
		g.warnStore("failure counter delete", err)
	}
}

func (g *Guard) reject(ip, window, message string) error {
	metrics.RecordAbuseDecision("rate_limit")
	g.logger.Warn("request rejected by rate limit",
		slog.String("ip_hash", logging.HashIP(ip)),
		slog.String("window", window))
	return apperror.New(apperror.CodeRateLimit, message)
}

// failOpen logs a store failure and admits the request anyway.
func (g *Guard) failOpen(op string, err error) error {
	metrics.RecordAbuseDecision("fail_open")
	g.warnStore(op, err)
	return nil
}

func (g *Guard) warnStore(op string, err error) {
	g.logger.Warn("counter store unavailable",
		slog.String("operation", op),
		slog.String("error", err.Error()))
}

func key(prefix, ip string) string {
	return fmt.Sprintf("%s:%s", prefix, ip)
}
