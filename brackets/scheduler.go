package brackets

import (
	"time"

	"github.com/WilliamSoderberg/volley-bracket/models"
)

// SchedulePlan holds the day layout.
type SchedulePlan struct {
	Courts   []string
	Duration time.Duration
	Start    time.Time
	// WaitForFeeders keeps a match from starting before the slots of the
	// matches feeding it have ended.
	WaitForFeeders bool
}

// Schedule assigns a court and start time to every numbered match, in number
// order, on the court that frees up first (court list order breaks ties).
// Readiness is ignored: the whole day is reserved up front. Every run
// rebuilds the assignment from scratch.
func Schedule(g *Graph, plan SchedulePlan) error {
	if len(plan.Courts) == 0 || plan.Duration <= 0 {
		return ErrInvalidSchedule
	}

	for _, m := range g.matches {
		m.Court, m.Time = nil, nil
	}

	free := make([]time.Time, len(plan.Courts))
	for i := range free {
		free[i] = plan.Start
	}
	ends := make(map[string]time.Time, len(g.matches))

	for _, m := range g.Numbered() {
		earliest := plan.Start
		if plan.WaitForFeeders {
			earliest = g.feedersEnd(m, ends, plan.Start)
		}
		best, bestAt := 0, later(free[0], earliest)
		for c := 1; c < len(free); c++ {
			if at := later(free[c], earliest); at.Before(bestAt) {
				best, bestAt = c, at
			}
		}
		court := plan.Courts[best]
		at := bestAt
		m.Court, m.Time = &court, &at
		free[best] = at.Add(plan.Duration)
		ends[m.ID] = free[best]
	}

	for _, m := range g.matches {
		m.RefreshStatus()
	}
	return nil
}

// feedersEnd is the time the last match feeding m ends. Ghost feeders take
// no court time, so they are looked through.
func (g *Graph) feedersEnd(m *models.Match, ends map[string]time.Time, start time.Time) time.Time {
	ready := start
	for _, src := range g.FedBy(m.ID) {
		feeder, ok := g.Match(src)
		if !ok {
			continue
		}
		var end time.Time
		if feeder.IsGhost() {
			end = g.feedersEnd(feeder, ends, start)
		} else {
			end = ends[src]
		}
		ready = later(ready, end)
	}
	return ready
}

func later(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
