package idgen

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// ExistsFunc reports whether a candidate identifier is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// Outcome says how a returned identifier was produced.
type Outcome int

const (
	// OutcomeUnique means the identifier passed the existence check.
	OutcomeUnique Outcome = iota
	// OutcomeFallback means the retry budget was exhausted and the
	// identifier carries a random suffix that was not re-checked.
	OutcomeFallback
)

func (o Outcome) String() string {
	if o == OutcomeFallback {
		return "fallback"
	}
	return "unique"
}

const (
	maxAttempts = 100
	retryDelay  = time.Millisecond
)

// Generator produces short human-readable identifiers seeded from the
// clock, with a bounded check-and-retry loop against persisted IDs.
// Exhausting the retry budget degrades to an unchecked random suffix
// instead of failing the caller.
type Generator struct {
	now     func() time.Time
	sleep   func(time.Duration)
	randInt func(int) int
}

func New() *Generator {
	return &Generator{
		now:     time.Now,
		sleep:   time.Sleep,
		randInt: rand.Intn,
	}
}

// OrderID returns an identifier of the form ORD-NNNNNN (six digits from
// the millisecond clock).
func (g *Generator) OrderID(ctx context.Context, exists ExistsFunc) (string, Outcome, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := fmt.Sprintf("ORD-%06d", g.now().UnixMilli()%1_000_000)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", OutcomeUnique, fmt.Errorf("check order id %s: %w", candidate, err)
		}
		if !taken {
			return candidate, OutcomeUnique, nil
		}
		g.sleep(retryDelay)
	}
	return fmt.Sprintf("ORD-%06d", g.randInt(1_000_000)), OutcomeFallback, nil
}

// CategoryID returns an identifier of the form CODE-NNN, where CODE is
// the category's 3-letter code and NNN comes from the millisecond clock.
func (g *Generator) CategoryID(ctx context.Context, category string, exists ExistsFunc) (string, Outcome, error) {
	code := CategoryCode(category)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := fmt.Sprintf("%s-%03d", code, g.now().UnixMilli()%1000)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", OutcomeUnique, fmt.Errorf("check category id %s: %w", candidate, err)
		}
		if !taken {
			return candidate, OutcomeUnique, nil
		}
		g.sleep(retryDelay)
	}
	return fmt.Sprintf("%s-%03d", code, g.randInt(999)+1), OutcomeFallback, nil
}

// Number extracts the numeric suffix of a generated identifier.
func Number(id string) (int, error) {
	i := strings.LastIndexByte(id, '-')
	if i < 0 || i == len(id)-1 {
		return 0, fmt.Errorf("identifier %q has no numeric suffix", id)
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0, fmt.Errorf("identifier %q has no numeric suffix", id)
	}
	return n, nil
}
