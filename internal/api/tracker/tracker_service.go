package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"caltext/app/observability/metrics"
	"caltext/internal/api/estimator"
	"caltext/internal/models"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service turns one inbound message into one reply string. Every error is
// converted to a short human-readable reply at this boundary; nothing
// propagates to the transport as a raw fault.
type Service interface {
	HandleMessage(ctx context.Context, text string) string
}

// ServiceImpl orchestrates classifier, estimator and entry store. It is
// stateless across calls: all state lives in the store and is re-read on
// every request.
type ServiceImpl struct {
	store     EntryStore
	estimator estimator.Service
	target    int
	loc       *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(store EntryStore, est estimator.Service, target int, loc *time.Location, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		store:     store,
		estimator: est,
		target:    target,
		loc:       loc,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ServiceImpl) HandleMessage(ctx context.Context, text string) string {
	ctx, span := otel.Tracer("TrackerService").Start(ctx, "HandleMessage")
	defer span.End()
	start := time.Now()

	intent := Classify(text)
	span.SetAttributes(attribute.String("intent", intent.Kind.String()))
	l := s.logger.With(
		slog.String("method", "HandleMessage"),
		slog.String("intent", intent.Kind.String()),
	)

	var reply string
	switch intent.Kind {
	case IntentSummary:
		reply = s.handleSummary(ctx, l)
	case IntentEdit:
		reply = s.handleEdit(ctx, l, intent.EntryNum, intent.Description)
	case IntentDelete:
		reply = s.handleDelete(ctx, l, intent.EntryNum)
	default:
		reply = s.handleLog(ctx, l, intent.Description)
	}

	m := metrics.Get()
	m.MessagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("intent", intent.Kind.String())))
	m.MessageDurationSeconds.Record(ctx, time.Since(start).Seconds())

	span.SetStatus(codes.Ok, "Message handled")
	return reply
}

func (s *ServiceImpl) handleLog(ctx context.Context, l *slog.Logger, description string) string {
	if description == "" {
		return emptyMessageReply
	}

	est, err := s.estimator.Estimate(ctx, description)
	if err != nil {
		// No mutation happened; the user just retries.
		l.ErrorContext(ctx, "Calorie estimation failed", slog.Any("error", err))
		metrics.Get().EstimatorErrorsTotal.Add(ctx, 1)
		return estimatorErrorReply
	}

	existing, err := s.store.ListToday(ctx)
	if err != nil {
		return s.storeFailure(ctx, l, "list today's entries", err)
	}

	now := s.now().In(s.loc)
	entry := models.Entry{
		Date:        now.Format("2006-01-02"),
		Time:        now.Format("03:04 PM"),
		Description: description,
		Items:       est.Items,
		Calories:    est.Total,
		DailyTotal:  sumCalories(existing) + est.Total,
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return s.storeFailure(ctx, l, "append entry", err)
	}
	s.countMutation(ctx, "append")

	total, err := s.store.RecomputeDailyTotals(ctx)
	if err != nil {
		return s.storeFailure(ctx, l, "recompute daily totals", err)
	}

	entryNum := len(existing) + 1
	l.InfoContext(ctx, "Entry logged",
		slog.Int("entry_num", entryNum),
		slog.Int("calories", est.Total),
		slog.Int("daily_total", total),
	)
	return formatLogReply(entryNum, *est, total, s.target)
}

func (s *ServiceImpl) handleSummary(ctx context.Context, l *slog.Logger) string {
	entries, err := s.store.ListToday(ctx)
	if err != nil {
		return s.storeFailure(ctx, l, "list today's entries", err)
	}
	l.DebugContext(ctx, "Summary built", slog.Int("count", len(entries)))
	return formatSummaryReply(entries, s.target)
}

func (s *ServiceImpl) handleEdit(ctx context.Context, l *slog.Logger, entryNum int, instruction string) string {
	entries, err := s.store.ListToday(ctx)
	if err != nil {
		return s.storeFailure(ctx, l, "list today's entries", err)
	}

	idx, err := Resolve(entryNum, entries)
	if err != nil {
		return s.outOfRange(ctx, l, err)
	}
	original := entries[idx]

	ce, err := s.estimator.EstimateCorrection(ctx, original.Description, instruction)
	if err != nil {
		l.ErrorContext(ctx, "Calorie re-estimation failed", slog.Any("error", err))
		metrics.Get().EstimatorErrorsTotal.Add(ctx, 1)
		return estimatorErrorReply
	}

	updated := original
	updated.Description = ce.Description
	updated.Items = ce.Items
	updated.Calories = ce.Total
	if err := s.store.UpdateAt(ctx, original.Ref, updated); err != nil {
		return s.storeFailure(ctx, l, "update entry", err)
	}
	s.countMutation(ctx, "update")

	total, err := s.store.RecomputeDailyTotals(ctx)
	if err != nil {
		return s.storeFailure(ctx, l, "recompute daily totals", err)
	}

	l.InfoContext(ctx, "Entry updated",
		slog.Int("entry_num", entryNum),
		slog.Int("calories", ce.Total),
		slog.Int("daily_total", total),
	)
	return formatEditReply(entryNum, *ce, total, s.target)
}

func (s *ServiceImpl) handleDelete(ctx context.Context, l *slog.Logger, entryNum int) string {
	entries, err := s.store.ListToday(ctx)
	if err != nil {
		return s.storeFailure(ctx, l, "list today's entries", err)
	}

	idx, err := Resolve(entryNum, entries)
	if err != nil {
		return s.outOfRange(ctx, l, err)
	}

	if err := s.store.DeleteAt(ctx, entries[idx].Ref); err != nil {
		return s.storeFailure(ctx, l, "delete entry", err)
	}
	s.countMutation(ctx, "delete")

	total, err := s.store.RecomputeDailyTotals(ctx)
	if err != nil {
		return s.storeFailure(ctx, l, "recompute daily totals", err)
	}

	l.InfoContext(ctx, "Entry deleted",
		slog.Int("entry_num", entryNum),
		slog.Int("daily_total", total),
	)
	return formatDeleteReply(entryNum, total, s.target)
}

func (s *ServiceImpl) outOfRange(ctx context.Context, l *slog.Logger, err error) string {
	var oor *models.OutOfRangeError
	if !errors.As(err, &oor) {
		// Resolve only ever fails with OutOfRangeError.
		return s.storeFailure(ctx, l, "resolve entry number", err)
	}
	l.WarnContext(ctx, "Entry number out of range",
		slog.Int("requested", oor.Requested),
		slog.Int("count", oor.Count),
	)
	return formatOutOfRangeReply(oor)
}

func (s *ServiceImpl) storeFailure(ctx context.Context, l *slog.Logger, op string, err error) string {
	l.ErrorContext(ctx, "Entry store operation failed",
		slog.String("op", op),
		slog.Any("error", err),
	)
	return storeErrorReply
}

func (s *ServiceImpl) countMutation(ctx context.Context, op string) {
	metrics.Get().StoreMutationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func sumCalories(entries []models.Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Calories
	}
	return total
}
