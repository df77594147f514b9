package numbering

import (
	"context"
	"fmt"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
)

// Source lists the contract numbers already stored under a prefix. The
// caller binds it to the transaction the candidate will be inserted in.
type Source interface {
	NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context, prefix string) ([]string, error)

func (f SourceFunc) NumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	return f(ctx, prefix)
}

// Allocator computes candidate contract numbers for the current year.
// A candidate is only final once it has been inserted against the unique
// constraint on contracts.contract_number.
type Allocator struct {
	clock clock.Clock
}

func NewAllocator(c clock.Clock) *Allocator {
	if c == nil {
		c = clock.System()
	}
	return &Allocator{clock: c}
}

// Next returns the candidate number following the highest one in src for
// the current year, starting at 001.
func (a *Allocator) Next(ctx context.Context, src Source) (string, error) {
	year := a.clock.Now().Year()
	numbers, err := src.NumbersWithPrefix(ctx, YearPrefix(year))
	if err != nil {
		return "", fmt.Errorf("numbering: list %d numbers: %w", year, err)
	}
	return Format(year, NextSequence(numbers, year)), nil
}

// Year exposes the allocator's notion of the current year.
func (a *Allocator) Year() int { return a.clock.Now().Year() }
