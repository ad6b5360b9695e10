package services

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/WilliamSoderberg/volley-bracket/brackets"
	"github.com/WilliamSoderberg/volley-bracket/models"
	"github.com/WilliamSoderberg/volley-bracket/repositories"
)

// Classify buckets tournaments by where now falls relative to their
// estimated window [start, start + numbered matches × match duration].
// Both ends are live. Tournaments whose date or start time does not parse
// are left out. Live and future are sorted by start, past by most recent.
func Classify(tournaments []*models.Tournament, now time.Time, loc *time.Location) models.Classification {
	type dated struct {
		summary models.TournamentSummary
		start   time.Time
	}
	var live, future, past []dated
	for _, t := range tournaments {
		start, err := t.StartAt(loc)
		if err != nil {
			continue
		}
		end := start.Add(time.Duration(t.PlayableMatches()) * t.Duration())
		d := dated{summary: summarize(t), start: start}
		switch {
		case now.Before(start):
			d.summary.Phase = models.PhaseFuture
			future = append(future, d)
		case now.After(end):
			d.summary.Phase = models.PhasePast
			past = append(past, d)
		default:
			d.summary.Phase = models.PhaseLive
			live = append(live, d)
		}
	}

	byStart := func(ds []dated, asc bool) []models.TournamentSummary {
		sort.SliceStable(ds, func(i, j int) bool {
			if asc {
				return ds[i].start.Before(ds[j].start)
			}
			return ds[i].start.After(ds[j].start)
		})
		out := make([]models.TournamentSummary, len(ds))
		for i, d := range ds {
			out[i] = d.summary
		}
		return out
	}
	return models.Classification{
		Live:   byStart(live, true),
		Future: byStart(future, true),
		Past:   byStart(past, false),
	}
}

func summarize(t *models.Tournament) models.TournamentSummary {
	return models.TournamentSummary{
		ID:         t.ID,
		Name:       t.Name,
		Date:       t.Date,
		StartTime:  t.StartTime,
		Type:       t.Type,
		TeamCount:  len(t.Teams),
		CourtCount: len(t.Courts),
	}
}

type DashboardService interface {
	// Dashboard classifies every stored tournament at now.
	Dashboard(ctx context.Context, now time.Time) (models.Classification, error)
	// WatchBoundaries emits a dashboard update whenever a tournament moves
	// between phases, checking every interval until ctx is done.
	WatchBoundaries(ctx context.Context, interval time.Duration) error
}

type dashboardService struct {
	repo     repositories.TournamentRepository
	notifier Notifier
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

func NewDashboardService(repo repositories.TournamentRepository, notifier Notifier, loc *time.Location, logger *slog.Logger) DashboardService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &dashboardService{
		repo:     repo,
		notifier: notifier,
		loc:      loc,
		logger:   logger.With(slog.String("component", "dashboard_service")),
		now:      time.Now,
	}
}

func (s *dashboardService) Dashboard(ctx context.Context, now time.Time) (models.Classification, error) {
	ts, err := s.repo.List(ctx)
	if err != nil {
		return models.Classification{}, err
	}
	return Classify(ts, now, s.loc), nil
}

func (s *dashboardService) WatchBoundaries(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.logger.Info("dashboard boundary watcher started", slog.Duration("interval", interval))

	var last map[string]models.Phase
	for {
		phases, err := s.phases(ctx)
		if err != nil {
			s.logger.Error("failed to classify tournaments", slog.Any("error", err))
		} else {
			if last != nil && phasesMoved(last, phases) {
				deliver(ctx, s.notifier, s.logger, Event{Type: brackets.EventDashboardUpdate})
			}
			last = phases
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *dashboardService) phases(ctx context.Context) (map[string]models.Phase, error) {
	c, err := s.Dashboard(ctx, s.now())
	if err != nil {
		return nil, err
	}
	phases := make(map[string]models.Phase)
	for _, group := range [][]models.TournamentSummary{c.Live, c.Future, c.Past} {
		for _, sum := range group {
			phases[sum.ID] = sum.Phase
		}
	}
	return phases, nil
}

// phasesMoved reports a phase change of a tournament present in both
// snapshots. Creation and deletion already notify on their own.
func phasesMoved(prev, cur map[string]models.Phase) bool {
	for id, p := range cur {
		if old, ok := prev[id]; ok && old != p {
			return true
		}
	}
	return false
}
