// Package ratelimit enforces a minimum delay between requests to the same
// network domain, shared across all concurrent lookup tasks.
package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DomainLimiter spaces out requests per domain. Each domain gets a
// token-bucket limiter with burst 1 refilling once per configured delay,
// so two concurrent callers to the same domain can never both proceed
// without waiting — the bucket hands out at most one zero-wait
// reservation per interval.
type DomainLimiter struct {
	defaultDelay time.Duration

	mu           sync.Mutex
	domainDelays map[string]time.Duration
	limiters     map[string]*rate.Limiter
}

// NewDomainLimiter creates a limiter with the given default inter-request
// delay and optional per-domain overrides.
func NewDomainLimiter(defaultDelay time.Duration, domainDelays map[string]time.Duration) *DomainLimiter {
	delays := make(map[string]time.Duration, len(domainDelays))
	for d, v := range domainDelays {
		delays[strings.ToLower(d)] = v
	}
	return &DomainLimiter{
		defaultDelay: defaultDelay,
		domainDelays: delays,
		limiters:     make(map[string]*rate.Limiter),
	}
}

// Acquire blocks until a request to rawURL's domain is allowed, and returns
// how long the caller waited. Requests to distinct domains never wait on
// each other.
func (l *DomainLimiter) Acquire(ctx context.Context, rawURL string) (time.Duration, error) {
	domain, err := extractDomain(rawURL)
	if err != nil {
		return 0, err
	}

	lim := l.limiterFor(domain)

	start := time.Now()
	if err := lim.Wait(ctx); err != nil {
		return 0, eris.Wrapf(err, "ratelimit: wait for %s", domain)
	}
	waited := time.Since(start)

	if waited > 0 {
		zap.L().Debug("rate limited",
			zap.String("domain", domain),
			zap.Duration("waited", waited),
		)
	}
	return waited, nil
}

// SetDelay overrides the inter-request delay for one domain. Takes effect
// immediately, including for an already-tracked domain.
func (l *DomainLimiter) SetDelay(domain string, delay time.Duration) {
	domain = strings.ToLower(domain)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.domainDelays[domain] = delay
	if lim, ok := l.limiters[domain]; ok {
		lim.SetLimit(limitFor(delay))
	}
}

// Reset clears tracked state for one domain, or for all domains when
// domain is empty.
func (l *DomainLimiter) Reset(domain string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if domain == "" {
		l.limiters = make(map[string]*rate.Limiter)
		return
	}
	delete(l.limiters, strings.ToLower(domain))
}

func (l *DomainLimiter) limiterFor(domain string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[domain]; ok {
		return lim
	}

	delay := l.defaultDelay
	if d, ok := l.domainDelays[domain]; ok {
		delay = d
	}
	lim := rate.NewLimiter(limitFor(delay), 1)
	l.limiters[domain] = lim
	return lim
}

func limitFor(delay time.Duration) rate.Limit {
	if delay <= 0 {
		return rate.Inf
	}
	return rate.Every(delay)
}

func extractDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "ratelimit: parse url %q", rawURL)
	}
	host := u.Host
	if host == "" {
		// Bare host given without a scheme.
		host = rawURL
	}
	return strings.ToLower(host), nil
}
