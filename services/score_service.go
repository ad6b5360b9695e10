package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/WilliamSoderberg/volley-bracket/brackets"
	"github.com/WilliamSoderberg/volley-bracket/metrics"
	"github.com/WilliamSoderberg/volley-bracket/models"
	"github.com/WilliamSoderberg/volley-bracket/repositories"
)

// ScoreResult is the committed outcome of a report or clear: the changed
// matches, requested match first, and the new document version.
type ScoreResult struct {
	TournamentID string          `json:"tournament_id"`
	Touched      []string        `json:"touched"`
	Matches      []*models.Match `json:"matches"`
	Version      int             `json:"version"`
}

// ScoreService is the public mutation entry point for match results.
type ScoreService interface {
	Report(ctx context.Context, tournamentID, matchID string, sets []models.Set, cred Credential) (*ScoreResult, error)
	// Clear removes a result. Cascade is reserved to admins.
	Clear(ctx context.Context, tournamentID, matchID string, opts brackets.ClearOptions, cred Credential) (*ScoreResult, error)
}

type scoreService struct {
	repo     repositories.TournamentRepository
	locks    *Locker
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewScoreService(
	repo repositories.TournamentRepository,
	locks *Locker,
	notifier Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) ScoreService {
	if logger == nil {
		logger = slog.Default()
	}
	return &scoreService{
		repo:     repo,
		locks:    locks,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With(slog.String("component", "score_service")),
	}
}

func (s *scoreService) Report(ctx context.Context, tournamentID, matchID string, sets []models.Set, cred Credential) (*ScoreResult, error) {
	return s.mutate(ctx, "report", tournamentID, matchID, cred, func(t *models.Tournament, g *brackets.Graph) (brackets.Result, error) {
		return brackets.Report(g, matchID, sets, brackets.SetRule{BestOf: t.BestOf})
	})
}

func (s *scoreService) Clear(ctx context.Context, tournamentID, matchID string, opts brackets.ClearOptions, cred Credential) (*ScoreResult, error) {
	if opts.Cascade && !cred.Admin {
		err := fmt.Errorf("%w: cascade clear needs an admin session", ErrForbiddenOperation)
		s.metrics.ScoreMutation("clear", errorOutcome(err))
		return nil, err
	}
	return s.mutate(ctx, "clear", tournamentID, matchID, cred, func(_ *models.Tournament, g *brackets.Graph) (brackets.Result, error) {
		return brackets.Clear(g, matchID, opts)
	})
}

type transform func(t *models.Tournament, g *brackets.Graph) (brackets.Result, error)

// mutate runs one engine transformation under the tournament lock: load a
// private copy, authorize, transform, persist with a version check. Readers
// only ever see the stored document before or after.
func (s *scoreService) mutate(ctx context.Context, op, tournamentID, matchID string, cred Credential, fn transform) (*ScoreResult, error) {
	res, t, err := s.apply(ctx, tournamentID, cred, fn)
	s.metrics.ScoreMutation(op, errorOutcome(err))
	log := s.logger.With(
		slog.String("op", op),
		slog.String("tournament_id", tournamentID),
		slog.String("match_id", matchID))
	if err != nil {
		log.Info("score mutation rejected", slog.String("outcome", errorOutcome(err)), slog.Any("error", err))
		return nil, err
	}
	log.Info("score mutation applied", slog.Int("touched", len(res.Touched)), slog.Int("version", t.Version))

	deliver(ctx, s.notifier, s.logger, Event{
		Type:         brackets.EventTournamentUpdate,
		TournamentID: t.ID,
		Touched:      res.Touched,
		Tournament:   t.Public(),
	})
	return &ScoreResult{
		TournamentID: t.ID,
		Touched:      res.Touched,
		Matches:      touchedMatches(t, res.Touched),
		Version:      t.Version,
	}, nil
}

func (s *scoreService) apply(ctx context.Context, tournamentID string, cred Credential, fn transform) (brackets.Result, *models.Tournament, error) {
	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	t, err := s.repo.GetByID(ctx, tournamentID)
	if err != nil {
		return brackets.Result{}, nil, translateRepoError(err)
	}
	if err := authorize(t, cred); err != nil {
		return brackets.Result{}, nil, err
	}
	g, err := graphOf(t)
	if err != nil {
		return brackets.Result{}, nil, err
	}
	res, err := fn(t, g)
	if err != nil {
		return brackets.Result{}, nil, err
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return brackets.Result{}, nil, translateRepoError(err)
	}
	return res, t, nil
}

func touchedMatches(t *models.Tournament, ids []string) []*models.Match {
	byID := make(map[string]*models.Match, len(t.Matches))
	for _, m := range t.Matches {
		byID[m.ID] = m
	}
	out := make([]*models.Match, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m.Clone())
		}
	}
	return out
}
