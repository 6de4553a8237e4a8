package screening

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	records "rpscreen/internal/records/models"
	"rpscreen/internal/screening/metrics"
	"rpscreen/internal/screening/models"
	dErrors "rpscreen/pkg/domain-errors"
	"rpscreen/pkg/platform/sentinel"
	"rpscreen/pkg/requestcontext"
)

// Records supplies the current customer and restricted party lists.
type Records interface {
	ListCustomers(ctx context.Context) []records.Customer
	ListRestrictedParties(ctx context.Context) []records.RestrictedParty
}

// MatchStore persists the match list of the latest run.
type MatchStore interface {
	List(ctx context.Context) []models.Match
	Replace(ctx context.Context, build func(prev []models.Match) []models.Match) ([]models.Match, error)
	Update(ctx context.Context, index int, fn func(*models.Match)) (models.Match, error)
}

// Service runs screening and records hold decisions.
type Service struct {
	records       Records
	matches       MatchStore
	engine        *Engine
	threshold     float64
	preserveHolds bool
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	logger        *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithEngine(e *Engine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithThreshold sets the lowest similarity kept by the similar pass.
func WithThreshold(threshold float64) Option {
	return func(s *Service) {
		s.threshold = threshold
	}
}

// WithPreserveHolds carries hold_type and dtype over to matches that a new
// run derives again for the same customer, restricted party and match type.
// Without it every run starts with all holds cleared.
func WithPreserveHolds(preserve bool) Option {
	return func(s *Service) {
		s.preserveHolds = preserve
	}
}

// New constructs a screening Service.
func New(records Records, matches MatchStore, opts ...Option) *Service {
	s := &Service{
		records:   records,
		matches:   matches,
		engine:    NewEngine(),
		threshold: DefaultThreshold,
		tracer:    otel.Tracer("rpscreen/screening"),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run screens the current lists and replaces the stored matches with the
// result. The stored list is only replaced once the full result is known.
func (s *Service) Run(ctx context.Context) ([]models.Match, error) {
	ctx, span := s.tracer.Start(ctx, "screening.Run")
	defer span.End()
	start := time.Now()

	customers := s.records.ListCustomers(ctx)
	parties := s.records.ListRestrictedParties(ctx)
	span.SetAttributes(
		attribute.Int("screening.customers", len(customers)),
		attribute.Int("screening.restricted_parties", len(parties)),
		attribute.Float64("screening.threshold", s.threshold),
	)

	fresh := s.engine.Screen(customers, parties, s.threshold, requestcontext.Now(ctx))
	carried := 0
	matches, err := s.matches.Replace(ctx, func(prev []models.Match) []models.Match {
		if s.preserveHolds {
			carried = carryHolds(prev, fresh)
		}
		return fresh
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace matches")
		return nil, translate(err, "failed to store screening results")
	}

	byType := countByType(matches)
	span.SetAttributes(
		attribute.Int("screening.matches.exact", byType[string(models.MatchTypeExact)]),
		attribute.Int("screening.matches.similar", byType[string(models.MatchTypeSimilar)]),
	)
	if s.metrics != nil {
		s.metrics.ObserveRun(start, byType)
	}
	s.logger.InfoContext(ctx, "screening completed",
		"request_id", requestcontext.RequestID(ctx),
		"customers", len(customers),
		"restricted_parties", len(parties),
		"exact_matches", byType[string(models.MatchTypeExact)],
		"similar_matches", byType[string(models.MatchTypeSimilar)],
		"holds_carried", carried,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return matches, nil
}

// List returns the matches of the latest run.
func (s *Service) List(ctx context.Context) []models.Match {
	return s.matches.List(ctx)
}

// UpdateHold sets the hold type of the match at index. dtype is only written
// when non-empty.
func (s *Service) UpdateHold(ctx context.Context, index int, holdType, dtype string) (*models.Match, error) {
	m, err := s.matches.Update(ctx, index, func(m *models.Match) {
		m.SetHold(holdType, dtype)
	})
	if err != nil {
		return nil, translate(err, "match not found")
	}
	if s.metrics != nil {
		s.metrics.IncrementHoldUpdated()
	}
	s.logger.InfoContext(ctx, "match hold updated",
		"request_id", requestcontext.RequestID(ctx),
		"match_index", index,
		"customer_id", m.CustomerID,
		"restricted_party_id", m.RestrictedPartyID,
		"hold_type", holdType,
	)
	return &m, nil
}

// carryHolds copies hold decisions from prev onto matching entries of next
// and reports how many were carried.
func carryHolds(prev, next []models.Match) int {
	type hold struct {
		holdType *string
		dtype    *string
	}
	held := make(map[models.Key]hold, len(prev))
	for _, m := range prev {
		if m.HoldType != nil || m.DType != nil {
			held[m.Key()] = hold{holdType: m.HoldType, dtype: m.DType}
		}
	}
	carried := 0
	for i := range next {
		if h, ok := held[next[i].Key()]; ok {
			next[i].HoldType = h.holdType
			next[i].DType = h.dtype
			carried++
		}
	}
	return carried
}

func countByType(matches []models.Match) map[string]int {
	byType := map[string]int{
		string(models.MatchTypeExact):   0,
		string(models.MatchTypeSimilar): 0,
	}
	for _, m := range matches {
		byType[string(m.MatchType)]++
	}
	return byType
}

func translate(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "matches are busy, retry shortly")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist matches")
	}
}
