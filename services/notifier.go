package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/WilliamSoderberg/volley-bracket/brackets"
	"github.com/WilliamSoderberg/volley-bracket/models"
	"github.com/WilliamSoderberg/volley-bracket/storage"
)

// Event describes a committed change. Tournament is the public view after
// the change and is nil when the tournament was deleted.
type Event struct {
	Type         string
	TournamentID string
	Touched      []string
	Tournament   *models.Tournament
	Deleted      bool
}

// Notifier delivers events outside the mutation's critical section.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev Event) error { return f(ctx, ev) }

type multiNotifier []Notifier

// NewMultiNotifier delivers every event to all notifiers concurrently.
// Nil notifiers are skipped.
func NewMultiNotifier(notifiers ...Notifier) Notifier {
	var m multiNotifier
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

func (m multiNotifier) Notify(ctx context.Context, ev Event) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, n := range m {
		g.Go(func() error { return n.Notify(ctx, ev) })
	}
	return g.Wait()
}

// TournamentUpdatePayload is pushed to spectators of one tournament.
type TournamentUpdatePayload struct {
	TournamentID string             `json:"tournament_id"`
	Touched      []string           `json:"touched,omitempty"`
	Deleted      bool               `json:"deleted,omitempty"`
	Tournament   *models.Tournament `json:"tournament,omitempty"`
}

type hubNotifier struct {
	hub  *brackets.Hub
	gate *versionGate
}

// NewHubNotifier pushes events to WebSocket clients. The tournament room gets
// the full update; the lobby only learns which tournament changed.
func NewHubNotifier(hub *brackets.Hub) Notifier {
	return &hubNotifier{hub: hub, gate: newVersionGate()}
}

func (n *hubNotifier) Notify(_ context.Context, ev Event) error {
	switch ev.Type {
	case brackets.EventDashboardUpdate:
		n.hub.BroadcastToRoom(brackets.LobbyRoom, brackets.WebSocketMessage{Type: ev.Type})
	case brackets.EventTournamentUpdate:
		return n.gate.apply(ev, func() error {
			room := brackets.TournamentRoom(ev.TournamentID)
			n.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
				Type: ev.Type,
				ID:   ev.TournamentID,
				Payload: TournamentUpdatePayload{
					TournamentID: ev.TournamentID,
					Touched:      ev.Touched,
					Deleted:      ev.Deleted,
					Tournament:   ev.Tournament,
				},
				RoomID: room,
			})
			n.hub.BroadcastToRoom(brackets.LobbyRoom, brackets.WebSocketMessage{Type: ev.Type, ID: ev.TournamentID})
			return nil
		})
	}
	return nil
}

type snapshotPublisher struct {
	store  storage.ObjectStore
	gate   *versionGate
	logger *slog.Logger
}

// NewSnapshotPublisher mirrors the public view of every changed tournament
// to object storage and removes it on delete.
func NewSnapshotPublisher(store storage.ObjectStore, logger *slog.Logger) Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &snapshotPublisher{store: store, gate: newVersionGate(), logger: logger}
}

func (p *snapshotPublisher) Notify(ctx context.Context, ev Event) error {
	if ev.Type != brackets.EventTournamentUpdate {
		return nil
	}
	if !ev.Deleted && ev.Tournament == nil {
		return nil
	}
	return p.gate.apply(ev, func() error { return p.publish(ctx, ev) })
}

func (p *snapshotPublisher) publish(ctx context.Context, ev Event) error {
	key := storage.SnapshotKey(ev.TournamentID)
	if ev.Deleted {
		return p.store.Delete(ctx, key)
	}
	body, err := json.Marshal(ev.Tournament)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot of %s: %w", ev.TournamentID, err)
	}
	res, err := p.store.Put(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	p.logger.Debug("snapshot published",
		slog.String("tournament_id", ev.TournamentID),
		slog.Int("version", ev.Tournament.Version),
		slog.String("location", res.Location))
	return nil
}

// deletedVersion ranks a deletion after every update of the tournament.
const deletedVersion = math.MaxInt

// versionGate keeps a sink from going back in time. Commits on one tournament
// are serialized, but their events are delivered outside the lock and may
// arrive out of order. The gate runs the sink one event at a time per
// tournament and drops an update whose version is not newer than the last
// one applied. Version 1 after a deletion is a new tournament reusing the id.
type versionGate struct {
	locks *Locker
	mu    sync.Mutex
	last  map[string]int
}

func newVersionGate() *versionGate {
	return &versionGate{locks: NewLocker(), last: make(map[string]int)}
}

func eventVersion(ev Event) (int, bool) {
	switch {
	case ev.Deleted:
		return deletedVersion, true
	case ev.Tournament != nil:
		return ev.Tournament.Version, true
	}
	return 0, false
}

// apply runs fn for ev unless a newer state was already applied. The
// version is recorded only when fn succeeds.
func (g *versionGate) apply(ev Event, fn func() error) error {
	version, ok := eventVersion(ev)
	if !ok {
		return fn()
	}
	unlock := g.locks.Lock(ev.TournamentID)
	defer unlock()

	g.mu.Lock()
	last, seen := g.last[ev.TournamentID]
	g.mu.Unlock()
	if seen && version <= last && !(last == deletedVersion && version == 1) {
		return nil
	}

	if err := fn(); err != nil {
		return err
	}
	g.mu.Lock()
	g.last[ev.TournamentID] = version
	g.mu.Unlock()
	return nil
}

const notifyTimeout = 10 * time.Second

// deliver runs the notifier detached from the request, logging failures:
// the change is already committed.
func deliver(ctx context.Context, n Notifier, logger *slog.Logger, events ...Event) {
	if n == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	for _, ev := range events {
		if err := n.Notify(ctx, ev); err != nil {
			logger.Warn("failed to deliver event",
				slog.String("type", ev.Type),
				slog.String("tournament_id", ev.TournamentID),
				slog.Any("error", err))
		}
	}
}
