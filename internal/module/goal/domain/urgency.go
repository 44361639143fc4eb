package domain

import (
	"sort"
	"time"
)

// Urgency is the five-level classification over goals derived from
// days-to-deadline and progress, used to weight per-goal allocation shares.
type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyModerate Urgency = "moderate"
	UrgencyNormal   Urgency = "normal"
	UrgencyLow      Urgency = "low"
)

// rank orders urgencies most-urgent-first for sorting.
var urgencyRank = map[Urgency]int{
	UrgencyOverdue:  0,
	UrgencyUrgent:   1,
	UrgencyModerate: 2,
	UrgencyNormal:   3,
	UrgencyLow:      4,
}

func (u Urgency) Rank() int { return urgencyRank[u] }

// ClassifyUrgency derives the urgency of a goal at the given instant:
// overdue (<0 days), urgent (0-30), moderate (31-90), normal (91-180), low
// (>180 or no deadline). A goal within 60 days and under 50% progress is
// upgraded to urgent.
func ClassifyUrgency(g *Goal, now time.Time) Urgency {
	days, ok := g.DaysToDeadline(now)
	if !ok {
		return UrgencyLow
	}

	var u Urgency
	switch {
	case days < 0:
		u = UrgencyOverdue
	case days <= 30:
		u = UrgencyUrgent
	case days <= 90:
		u = UrgencyModerate
	case days <= 180:
		u = UrgencyNormal
	default:
		u = UrgencyLow
	}

	if days >= 0 && days <= 60 && g.ProgressPercent() < 50 {
		u = UrgencyUrgent
	}
	return u
}

// SortByUrgency orders goals most-urgent-first: urgency rank, then
// days-to-deadline ascending (no deadline last), then progress ascending.
func SortByUrgency(goals []Goal, now time.Time) {
	sort.SliceStable(goals, func(i, j int) bool {
		gi, gj := &goals[i], &goals[j]
		ri, rj := ClassifyUrgency(gi, now).Rank(), ClassifyUrgency(gj, now).Rank()
		if ri != rj {
			return ri < rj
		}
		di, oki := gi.DaysToDeadline(now)
		dj, okj := gj.DaysToDeadline(now)
		if oki != okj {
			return oki
		}
		if oki && okj && di != dj {
			return di < dj
		}
		return gi.ProgressPercent() < gj.ProgressPercent()
	})
}
