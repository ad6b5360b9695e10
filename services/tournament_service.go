package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WilliamSoderberg/volley-bracket/brackets"
	"github.com/WilliamSoderberg/volley-bracket/metrics"
	"github.com/WilliamSoderberg/volley-bracket/models"
	"github.com/WilliamSoderberg/volley-bracket/repositories"
)

// TeamInput is a bare team name or an {"id", "name"} object.
type TeamInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (t *TeamInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		t.ID = ""
		return json.Unmarshal(b, &t.Name)
	}
	type plain TeamInput
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	return dec.Decode((*plain)(t))
}

// TournamentInput carries the admin-editable settings.
type TournamentInput struct {
	Name           string             `json:"name"`
	Code           string             `json:"code"`
	Type           models.BracketType `json:"type"`
	Date           string             `json:"date"`
	StartTime      string             `json:"start_time"`
	MatchDuration  int                `json:"match_duration"`
	Courts         []string           `json:"courts"`
	Teams          []TeamInput        `json:"teams"`
	BestOf         int                `json:"best_of"`
	WaitForFeeders bool               `json:"wait_for_feeders"`
	// Version, when non-zero on update, must equal the stored version.
	Version int `json:"version,omitempty"`
	// Force lets an update rebuild a bracket that already has results,
	// discarding them.
	Force bool `json:"force,omitempty"`
}

// TournamentView is the public tournament plus its day plan.
type TournamentView struct {
	*models.Tournament
	Schedule []ScheduleEntry `json:"schedule"`
}

type TournamentService interface {
	Create(ctx context.Context, in TournamentInput) (*models.Tournament, error)
	Get(ctx context.Context, id string) (*TournamentView, error)
	// GetDocument returns the full document, access code included.
	GetDocument(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	Update(ctx context.Context, id string, in TournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, id string) error
}

type tournamentService struct {
	repo     repositories.TournamentRepository
	locks    *Locker
	notifier Notifier
	metrics  *metrics.Metrics
	loc      *time.Location
	logger   *slog.Logger
	newID    func() string
}

func NewTournamentService(
	repo repositories.TournamentRepository,
	locks *Locker,
	notifier Notifier,
	m *metrics.Metrics,
	loc *time.Location,
	logger *slog.Logger,
) TournamentService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &tournamentService{
		repo:     repo,
		locks:    locks,
		notifier: notifier,
		metrics:  m,
		loc:      loc,
		logger:   logger.With(slog.String("component", "tournament_service")),
		newID:    func() string { return uuid.NewString()[:8] },
	}
}

const createAttempts = 3

func (s *tournamentService) Create(ctx context.Context, in TournamentInput) (*models.Tournament, error) {
	settings, teams, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}
	t := settings
	t.Teams = teams
	if err := s.rebuild(t); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		t.ID = s.newID()
		err = translateRepoError(s.repo.Create(ctx, t))
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateID) || attempt == createAttempts {
			return nil, fmt.Errorf("failed to create tournament: %w", err)
		}
	}

	s.logger.Info("tournament created",
		slog.String("tournament_id", t.ID),
		slog.String("type", string(t.Type)),
		slog.Int("teams", len(t.Teams)),
		slog.Int("matches", t.PlayableMatches()))
	s.notifyChanged(ctx, t, nil)
	return t, nil
}

func (s *tournamentService) Get(ctx context.Context, id string) (*TournamentView, error) {
	t, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TournamentView{Tournament: t.Public(), Schedule: BuildSchedule(t)}, nil
}

func (s *tournamentService) GetDocument(ctx context.Context, id string) (*models.Tournament, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	ts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return ts, nil
}

// Update applies new settings. A changed team list or bracket type rebuilds
// the bracket from scratch, which is refused with ErrTournamentStarted once a
// result exists unless in.Force is set. Any other change keeps results and
// lays the schedule out again.
func (s *tournamentService) Update(ctx context.Context, id string, in TournamentInput) (*models.Tournament, error) {
	settings, teams, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		unlock()
		return nil, translateRepoError(err)
	}
	if in.Version != 0 && in.Version != t.Version {
		unlock()
		return nil, fmt.Errorf("%w (have %d, stored %d)", ErrVersionConflict, in.Version, t.Version)
	}

	rebuilt := settings.Type != t.Type || !sameTeams(teams, t.Teams)
	if rebuilt && !in.Force {
		if n := finishedMatches(t); n > 0 {
			unlock()
			return nil, fmt.Errorf("%w (%d results reported)", ErrTournamentStarted, n)
		}
	}
	t.Name, t.Code, t.Type = settings.Name, settings.Code, settings.Type
	t.Date, t.StartTime, t.MatchDuration = settings.Date, settings.StartTime, settings.MatchDuration
	t.Courts, t.BestOf, t.WaitForFeeders = settings.Courts, settings.BestOf, settings.WaitForFeeders
	t.Teams = teams

	if rebuilt {
		err = s.rebuild(t)
	} else {
		var g *brackets.Graph
		if g, err = graphOf(t); err == nil {
			err = reschedule(t, g, s.loc)
		}
	}
	if err == nil {
		err = translateRepoError(s.repo.Update(ctx, t))
	}
	unlock()
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament updated",
		slog.String("tournament_id", t.ID),
		slog.Bool("rebuilt", rebuilt),
		slog.Int("version", t.Version))
	s.notifyChanged(ctx, t, nil)
	return t, nil
}

func (s *tournamentService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	err := translateRepoError(s.repo.Delete(ctx, id))
	unlock()
	if err != nil {
		return err
	}

	s.logger.Info("tournament deleted", slog.String("tournament_id", id))
	deliver(ctx, s.notifier, s.logger,
		Event{Type: brackets.EventDashboardUpdate, TournamentID: id},
		Event{Type: brackets.EventTournamentUpdate, TournamentID: id, Deleted: true},
	)
	return nil
}

// finishedMatches counts reported results; bye matches do not count.
func finishedMatches(t *models.Tournament) int {
	n := 0
	for _, m := range t.Matches {
		if !m.IsGhost() && m.Status == models.StatusFinished {
			n++
		}
	}
	return n
}

// rebuild replaces the matches of t with a fresh bracket and schedule.
func (s *tournamentService) rebuild(t *models.Tournament) error {
	g, err := brackets.Build(t.Teams, t.Type)
	if err != nil {
		return err
	}
	t.Matches = g.Matches()
	if err := reschedule(t, g, s.loc); err != nil {
		return err
	}
	s.metrics.BracketBuilt(string(t.Type))
	return nil
}

func (s *tournamentService) notifyChanged(ctx context.Context, t *models.Tournament, touched []string) {
	deliver(ctx, s.notifier, s.logger,
		Event{Type: brackets.EventDashboardUpdate, TournamentID: t.ID},
		Event{Type: brackets.EventTournamentUpdate, TournamentID: t.ID, Touched: touched, Tournament: t.Public()},
	)
}

// normalizeInput validates settings and returns them as a document without
// id or matches, plus the seeded team list.
func normalizeInput(in TournamentInput) (*models.Tournament, []models.Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, ErrTournamentNameRequired
	}
	typ := in.Type
	if typ == "" {
		typ = models.BracketSingle
	}
	if !typ.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", brackets.ErrUnsupportedType, typ)
	}
	date := strings.TrimSpace(in.Date)
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, nil, fmt.Errorf("%w (got %q)", ErrInvalidDate, in.Date)
	}
	start := strings.TrimSpace(in.StartTime)
	if _, err := time.Parse(models.StartTimeLayout, start); err != nil {
		return nil, nil, fmt.Errorf("%w (got %q)", ErrInvalidStartTime, in.StartTime)
	}
	if in.MatchDuration <= 0 {
		return nil, nil, ErrInvalidDuration
	}
	if in.BestOf < 0 || (in.BestOf > 0 && in.BestOf%2 == 0) {
		return nil, nil, fmt.Errorf("%w (got %d)", ErrInvalidBestOf, in.BestOf)
	}
	courts, err := normalizeCourts(in.Courts)
	if err != nil {
		return nil, nil, err
	}
	teams, err := normalizeTeams(in.Teams)
	if err != nil {
		return nil, nil, err
	}

	return &models.Tournament{
		Name:           name,
		Code:           in.Code,
		Type:           typ,
		Date:           date,
		StartTime:      start,
		MatchDuration:  in.MatchDuration,
		Courts:         courts,
		BestOf:         in.BestOf,
		WaitForFeeders: in.WaitForFeeders,
	}, teams, nil
}

func normalizeCourts(in []string) ([]string, error) {
	courts := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: duplicate court %q", ErrInvalidCourts, c)
		}
		seen[c] = true
		courts = append(courts, c)
	}
	if len(courts) == 0 {
		return nil, ErrInvalidCourts
	}
	return courts, nil
}

// normalizeTeams seeds ids T1..Tn when none are given. Explicit ids must be
// given for every team.
func normalizeTeams(in []TeamInput) ([]models.Team, error) {
	withID := 0
	for _, t := range in {
		if strings.TrimSpace(t.ID) != "" {
			withID++
		}
	}
	if withID == 0 {
		names := make([]string, len(in))
		for i, t := range in {
			names[i] = t.Name
		}
		return models.TeamsFromNames(names), nil
	}
	if withID != len(in) {
		return nil, ErrInvalidTeamList
	}
	teams := make([]models.Team, len(in))
	for i, t := range in {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: team %q has no name", ErrInvalidTeamList, t.ID)
		}
		teams[i] = models.Team{ID: strings.TrimSpace(t.ID), Name: name}
	}
	return teams, nil
}

func sameTeams(a, b []models.Team) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
