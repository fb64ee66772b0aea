package screen

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/seenimoa/valuescreen/internal/datasource"
	"github.com/seenimoa/valuescreen/internal/valuation"
)

// Fetcher is the part of datasource.Aggregator the service needs.
type Fetcher interface {
	Fetch(ctx context.Context, ticker string) (*datasource.Snapshot, error)
}

// Service fetches a company's data and screens it.
type Service struct {
	fetcher Fetcher
	logger  *log.Logger
}

// NewService creates a screening service. A nil logger uses the default.
func NewService(fetcher Fetcher, logger *log.Logger) *Service {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Service{fetcher: fetcher, logger: logger}
}

// Run fetches ticker and screens it. Only data retrieval errors are
// returned; valuation problems are reported inside the Report.
func (s *Service) Run(ctx context.Context, ticker string, in Inputs) (*Report, error) {
	snap, err := s.fetcher.Fetch(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	if snap.Fundamentals == nil {
		return nil, fmt.Errorf("fetch %s: no fundamentals returned", ticker)
	}

	rep := Screen(snap.Fundamentals, in)
	rep.Headlines = snap.Headlines
	rep.Warnings = append(rep.Warnings, snap.Warnings...)

	ev := s.logger.Info().
		Str("ticker", rep.Ticker).
		Str("source", rep.Source).
		Int("fundamental_score", rep.Fundamentals.Score).
		Int("moat_score", rep.MoatScore).
		Str("rating", string(rep.Rating))
	if err := rep.Err(); IsValuationError(err) {
		ev = ev.Str("valuation_error", valuation.Kind(err))
	}
	if rep.Margin.Defined {
		ev = ev.Float64("margin", rep.Margin.Value)
	}
	ev.Msg("screened")

	s.logger.Debug().
		Str("ticker", rep.Ticker).
		Bool("checklist_passed", rep.ChecklistPassed).
		Strs("checklist", rep.Fundamentals.Reasons()).
		Msg("fundamental checklist")

	return rep, nil
}
