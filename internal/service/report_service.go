package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/repository"
	"github.com/spec-kit/service-desk/pkg/export"
)

// ReportService builds dashboard metrics and CSV exports from ticket
// snapshots. Aggregation itself is pure; this service only fetches the
// snapshot, delegates, and caches the result.
type ReportService struct {
	tickets  repository.TicketRepository
	cache    SnapshotCache
	logger   *zap.Logger
	exporter *export.CSVExporter
	cacheTTL time.Duration
	now      func() time.Time
}

// ReportDependencies bundles constructor dependencies.
type ReportDependencies struct {
	TicketRepo repository.TicketRepository
	Cache      SnapshotCache
	Logger     *zap.Logger
	CacheTTL   time.Duration
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReportService{
		tickets:  deps.TicketRepo,
		cache:    deps.Cache,
		logger:   logger,
		exporter: export.NewCSVExporter(),
		cacheTTL: ttl,
		now:      time.Now,
	}
}

// Metrics returns aggregated metrics for tickets created in the given range,
// indicating whether the cache served the result. Cache failures degrade to
// recomputation.
func (s *ReportService) Metrics(ctx context.Context, rng domain.DateRange) (*domain.ReportMetrics, bool, error) {
	key := metricsCacheKey(rng)
	if s.cache != nil {
		var cached domain.ReportMetrics
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	snapshot, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, false, mapRepoError(err, "ticket")
	}
	metrics := ComputeMetrics(FilterByCreatedRange(snapshot, rng))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, metrics, s.cacheTTL); err != nil {
			s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return &metrics, false, nil
}

// ExportCSV renders the matching tickets as a CSV download. The returned
// filename carries the export date.
func (s *ReportService) ExportCSV(ctx context.Context, rng domain.DateRange) (string, []byte, error) {
	snapshot, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return "", nil, mapRepoError(err, "ticket")
	}
	matching := FilterByCreatedRange(snapshot, rng)

	data := export.Dataset{
		Headers: []string{
			"ticket_number", "title", "description", "category", "priority", "status",
			"requester_name", "requester_email", "assigned_to",
			"created_at", "updated_at", "resolved_at", "closed_at",
		},
	}
	for i := range matching {
		data.Rows = append(data.Rows, csvRow(&matching[i]))
	}

	raw, err := s.exporter.Render(data)
	if err != nil {
		return "", nil, err
	}
	filename := fmt.Sprintf("service-desk-report-%s.csv", s.now().Format("2006-01-02"))
	return filename, raw, nil
}

// FilterByCreatedRange returns the tickets created within the inclusive
// range. It never mutates its input.
func FilterByCreatedRange(tickets []domain.TicketDetail, rng domain.DateRange) []domain.TicketDetail {
	if rng.From == nil && rng.To == nil {
		return tickets
	}
	matching := make([]domain.TicketDetail, 0, len(tickets))
	for i := range tickets {
		if rng.Contains(tickets[i].CreatedAt) {
			matching = append(matching, tickets[i])
		}
	}
	return matching
}

// ComputeMetrics aggregates a ticket snapshot. It is deterministic, issues no
// storage queries, and leaves its input untouched. Resolved and closed counts
// derive from the lifecycle timestamps, not the current status.
func ComputeMetrics(tickets []domain.TicketDetail) domain.ReportMetrics {
	metrics := domain.ReportMetrics{
		Total:      len(tickets),
		ByStatus:   make(map[string]int),
		ByCategory: make(map[string]int),
		ByPriority: make(map[string]int),
	}

	var resolutionSum time.Duration
	for i := range tickets {
		t := &tickets[i]
		metrics.ByStatus[t.StatusName]++
		metrics.ByCategory[t.CategoryName]++
		metrics.ByPriority[t.PriorityName]++
		if t.ResolvedAt != nil {
			metrics.ResolvedCount++
			resolutionSum += t.ResolvedAt.Sub(t.CreatedAt)
		}
		if t.ClosedAt != nil {
			metrics.ClosedCount++
		}
	}

	if metrics.ResolvedCount > 0 {
		hours := int(math.Round(resolutionSum.Hours() / float64(metrics.ResolvedCount)))
		metrics.AvgResolutionHours = &hours
	}
	if metrics.Total > 0 {
		metrics.ResolutionRate = float64(metrics.ResolvedCount) / float64(metrics.Total)
		metrics.ClosureRate = float64(metrics.ClosedCount) / float64(metrics.Total)
	}
	return metrics
}

func metricsCacheKey(rng domain.DateRange) string {
	from, to := "-", "-"
	if rng.From != nil {
		from = rng.From.UTC().Format("2006-01-02")
	}
	if rng.To != nil {
		to = rng.To.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("report:metrics:%s:%s", from, to)
}

func csvRow(t *domain.TicketDetail) []string {
	assigned := ""
	if t.AssignedTo != nil {
		assigned = *t.AssignedTo
	}
	return []string{
		t.TicketNumber,
		t.Title,
		t.Description,
		t.CategoryName,
		t.PriorityName,
		t.StatusName,
		t.RequesterName,
		t.RequesterEmail,
		assigned,
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
		formatOptionalTime(t.ResolvedAt),
		formatOptionalTime(t.ClosedAt),
	}
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
