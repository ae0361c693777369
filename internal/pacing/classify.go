package pacing

import (
	"sort"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
)

// Registrant is the view of a registration the classifier needs.
type Registrant interface {
	CourseID() string
	PaceOrderValue() (int, bool)
	CountsTowardPace() bool
}

// Classification is the pace and track derived from one student's
// registrations in a term. Ordered holds the counted registrations in their
// canonical pace order.
type Classification[R Registrant] struct {
	Pace    int
	Track   models.PaceTrack
	Ordered []R
}

// Classify computes pace and track. Registrations that carry a pace order come
// first, ascending, with ties broken by catalog order; the rest follow in
// catalog order. A course registered twice counts once. An empty set yields
// pace 0 on track A.
func Classify[R Registrant](regs []R) Classification[R] {
	eligible := make([]R, 0, len(regs))
	for _, r := range regs {
		if r.CountsTowardPace() {
			eligible = append(eligible, r)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return lessCanonical(eligible[i], eligible[j])
	})

	seen := make(map[string]struct{}, len(eligible))
	ordered := eligible[:0]
	for _, r := range eligible {
		if _, dup := seen[r.CourseID()]; dup {
			continue
		}
		seen[r.CourseID()] = struct{}{}
		ordered = append(ordered, r)
	}

	pace := len(ordered)
	if pace == 0 {
		return Classification[R]{Pace: 0, Track: models.TrackA}
	}
	return Classification[R]{
		Pace:    pace,
		Track:   trackFor(pace, ordered[0].CourseID()),
		Ordered: ordered,
	}
}

func lessCanonical(a, b Registrant) bool {
	ao, aok := a.PaceOrderValue()
	bo, bok := b.PaceOrderValue()
	if aok != bok {
		return aok
	}
	if aok && ao != bo {
		return ao < bo
	}
	ar, _ := models.CourseRank(a.CourseID())
	br, _ := models.CourseRank(b.CourseID())
	return ar < br
}

// trackFor picks the track from the first course. A track the pace does not
// have is lowered to the highest valid track below it.
func trackFor(pace int, firstCourse string) models.PaceTrack {
	var candidate models.PaceTrack
	switch firstCourse {
	case models.CourseM117:
		candidate = models.TrackA
	case models.CourseM118:
		candidate = models.TrackB
	case models.CourseM124, models.CourseM125:
		candidate = models.TrackC
	default:
		candidate = models.TrackD
	}

	tracks := trackSets[pace]
	if len(tracks) == 0 {
		return models.TrackA
	}
	best := tracks[0]
	for _, t := range tracks {
		if t <= candidate {
			best = t
		}
	}
	return best
}

// Repair is a pace-order correction for one registration.
type Repair[R Registrant] struct {
	Registration R
	Previous     *int
	Order        int
}

// PaceOrderRepairs lists registrations whose stored pace order is missing or
// differs from their position in the canonical ordering.
func PaceOrderRepairs[R Registrant](c Classification[R]) []Repair[R] {
	var repairs []Repair[R]
	for i, r := range c.Ordered {
		want := i + 1
		have, ok := r.PaceOrderValue()
		if ok && have == want {
			continue
		}
		var prev *int
		if ok {
			v := have
			prev = &v
		}
		repairs = append(repairs, Repair[R]{Registration: r, Previous: prev, Order: want})
	}
	return repairs
}
