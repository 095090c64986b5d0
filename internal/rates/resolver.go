// Package rates resolves the USD exchange rate applied to a batch of
// dollar-denominated records: fetched from a rate service, entered by hand
// when the fetch fails, or defaulted to zero.
package rates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ErrFetch wraps every failure of a Fetcher.
var ErrFetch = errors.New("rate fetch failed")

// State is a step of the resolution state machine.
type State int

const (
	StateUnresolved State = iota
	StateFetching
	StateFetchFailed
	StateManualPrompt
	StateResolved
	StateDefaulted
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateFetching:
		return "fetching"
	case StateFetchFailed:
		return "fetch-failed"
	case StateManualPrompt:
		return "manual-prompt"
	case StateResolved:
		return "resolved"
	case StateDefaulted:
		return "defaulted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	return s == StateResolved || s == StateDefaulted
}

// Source records where a rate came from.
type Source string

const (
	SourceAPI     Source = "api"
	SourceManual  Source = "manual"
	SourceDefault Source = "default"
)

// ExchangeRate is the outcome of resolving one key.
type ExchangeRate struct {
	Rate   decimal.Decimal
	State  State
	Source Source
}

// Fetcher retrieves a rate for a resolution key from a remote service.
type Fetcher interface {
	FetchRate(ctx context.Context, key string) (decimal.Decimal, error)
}

// Prompter reads one line of manual input. It returns io.EOF when the user
// cancels or input is exhausted.
type Prompter interface {
	Prompt(message string) (string, error)
}

// Cache memoizes terminal results by resolution key.
type Cache struct {
	mu      sync.Mutex
	entries map[string]ExchangeRate
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]ExchangeRate)}
}

// Get returns the memoized rate for key.
func (c *Cache) Get(key string) (ExchangeRate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	return r, ok
}

// Put stores a terminal rate for key. The first value stored wins.
func (c *Cache) Put(key string, r ExchangeRate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = r
	}
}

// Reset forgets every memoized rate.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]ExchangeRate)
}

// Len returns the number of memoized keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Resolver runs the fetch, manual, default fallback chain.
type Resolver struct {
	fetcher Fetcher
	prompt  Prompter // nil disables manual entry
	cache   *Cache
	timeout time.Duration
	log     zerolog.Logger
	states  map[string]State
}

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 10 * time.Second

// NewResolver creates a Resolver. A nil cache gets a private one.
func NewResolver(fetcher Fetcher, prompt Prompter, cache *Cache, timeout time.Duration, log zerolog.Logger) *Resolver {
	if cache == nil {
		cache = NewCache()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		fetcher: fetcher,
		prompt:  prompt,
		cache:   cache,
		timeout: timeout,
		log:     log,
		states:  make(map[string]State),
	}
}

// Cache returns the resolver's memoization cache.
func (r *Resolver) Cache() *Cache { return r.cache }

// State returns the last state reached for key.
func (r *Resolver) State(key string) State {
	if rate, ok := r.cache.Get(key); ok {
		return rate.State
	}
	return r.states[key]
}

// Resolve returns the rate for key, reusing a memoized result when present.
// It never fails: every error path ends in a Defaulted rate of zero.
func (r *Resolver) Resolve(ctx context.Context, key string) ExchangeRate {
	if rate, ok := r.cache.Get(key); ok {
		return rate
	}

	rate := r.resolve(ctx, key)
	r.states[key] = rate.State
	r.cache.Put(key, rate)
	return rate
}

func (r *Resolver) resolve(ctx context.Context, key string) ExchangeRate {
	r.states[key] = StateFetching
	if r.fetcher != nil {
		fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
		value, err := r.fetcher.FetchRate(fetchCtx, key)
		cancel()
		if err == nil {
			r.log.Info().Str("key", key).Str("rate", value.String()).Msg("exchange rate fetched")
			return ExchangeRate{Rate: value, State: StateResolved, Source: SourceAPI}
		}
		r.log.Warn().Err(err).Str("key", key).Msg("exchange rate fetch failed")
	}
	r.states[key] = StateFetchFailed

	if r.prompt != nil {
		r.states[key] = StateManualPrompt
		if value, ok := r.manual(key); ok {
			return ExchangeRate{Rate: value, State: StateResolved, Source: SourceManual}
		}
	}

	r.log.Warn().Str("key", key).Msg("no exchange rate entered, using 0")
	return ExchangeRate{Rate: decimal.Zero, State: StateDefaulted, Source: SourceDefault}
}

// manual prompts until a decimal is entered, the input is empty, or the
// prompter is cancelled.
func (r *Resolver) manual(key string) (decimal.Decimal, bool) {
	message := fmt.Sprintf("USD rate for %s (Enter to skip): ", key)
	for {
		line, err := r.prompt.Prompt(message)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.log.Warn().Err(err).Msg("reading manual rate")
			}
			return decimal.Zero, false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return decimal.Zero, false
		}
		value, err := ParseManual(line)
		if err != nil {
			message = "Invalid value, enter a number such as 39.5: "
			continue
		}
		return value, true
	}
}

// ParseManual reads a hand-typed rate, accepting "," as decimal separator.
func ParseManual(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}
