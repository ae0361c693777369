// Package pacing classifies students into pace and pace track and checks the
// milestone deadline schedules that belong to each (pace, track) pair.
package pacing

import (
	"sort"

	"github.com/srbenoit/mathops-db-sub010/internal/models"
)

// MaxPace is the largest number of paced courses a student can carry.
const MaxPace = 5

const (
	unitCount = 7
	// midtermUnit is the unit slot whose number the midterm shares.
	midtermUnit = 4
	finalUnit   = 8
)

var trackSets = map[int][]models.PaceTrack{
	1: {models.TrackA, models.TrackB, models.TrackC, models.TrackD},
	2: {models.TrackA, models.TrackB, models.TrackC},
	3: {models.TrackA, models.TrackB, models.TrackC},
	4: {models.TrackA, models.TrackB},
	5: {models.TrackA},
}

var typeRank = map[models.MilestoneType]int{
	models.MilestoneUsersExam:     0,
	models.MilestoneReviewExam:    1,
	models.MilestoneReviewLastTry: 2,
	models.MilestoneUnitExam:      3,
	models.MilestoneUnitLastTry:   4,
	models.MilestoneMidterm:       5,
	models.MilestoneFinalExam:     6,
	models.MilestoneFinalLastTry:  7,
}

// Slot is one expected (number, type) entry in a track's schedule.
type Slot struct {
	Number int                  `json:"ms_nbr"`
	Type   models.MilestoneType `json:"ms_type"`
}

// Pace returns the pace encoded in the milestone number.
func (s Slot) Pace() int { return s.Number / 100 }

// Order returns the course slot (1-based; 0 for the user's exam gate).
func (s Slot) Order() int { return s.Number / 10 % 10 }

// Unit returns the unit encoded in the milestone number.
func (s Slot) Unit() int { return s.Number % 10 }

// MilestoneNumber encodes pace, course order and unit.
func MilestoneNumber(pace, order, unit int) int {
	return pace*100 + order*10 + unit
}

// Tracks returns the valid tracks for pace, or nil when pace is out of range.
func Tracks(pace int) []models.PaceTrack {
	tracks := trackSets[pace]
	if tracks == nil {
		return nil
	}
	out := make([]models.PaceTrack, len(tracks))
	copy(out, tracks)
	return out
}

// ValidTrack reports whether track belongs to pace.
func ValidTrack(pace int, track models.PaceTrack) bool {
	for _, t := range trackSets[pace] {
		if t == track {
			return true
		}
	}
	return false
}

// ExpectedSlots enumerates the schedule every track of pace must carry, in
// sequence order.
func ExpectedSlots(pace int) []Slot {
	if pace < 1 || pace > MaxPace {
		return nil
	}
	slots := make([]Slot, 0, ExpectedCount(pace))
	slots = append(slots, Slot{Number: MilestoneNumber(pace, 0, 0), Type: models.MilestoneUsersExam})
	for order := 1; order <= pace; order++ {
		for unit := 1; unit <= unitCount; unit++ {
			nbr := MilestoneNumber(pace, order, unit)
			slots = append(slots,
				Slot{Number: nbr, Type: models.MilestoneReviewExam},
				Slot{Number: nbr, Type: models.MilestoneReviewLastTry},
				Slot{Number: nbr, Type: models.MilestoneUnitExam},
				Slot{Number: nbr, Type: models.MilestoneUnitLastTry},
			)
			if unit == midtermUnit {
				slots = append(slots, Slot{Number: nbr, Type: models.MilestoneMidterm})
			}
		}
		final := MilestoneNumber(pace, order, finalUnit)
		slots = append(slots,
			Slot{Number: final, Type: models.MilestoneFinalExam},
			Slot{Number: final, Type: models.MilestoneFinalLastTry},
		)
	}
	return slots
}

// ExpectedCount is the number of milestones each track of pace must carry:
// one user's exam gate plus 31 per course.
func ExpectedCount(pace int) int {
	if pace < 1 || pace > MaxPace {
		return 0
	}
	return 1 + pace*(unitCount*4+3)
}

// TypeRank orders milestone types that share a number.
func TypeRank(t models.MilestoneType) int {
	if r, ok := typeRank[t]; ok {
		return r
	}
	return len(typeRank)
}

// SlotOf returns the slot identity of a template milestone.
func SlotOf(m models.Milestone) Slot {
	return Slot{Number: m.Number, Type: m.Type}
}

// SortMilestones orders milestones by number, then by type rank.
func SortMilestones(ms []models.Milestone) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Number != ms[j].Number {
			return ms[i].Number < ms[j].Number
		}
		return TypeRank(ms[i].Type) < TypeRank(ms[j].Type)
	})
}

// LastTryOf returns the last-try partner of a primary milestone type.
func LastTryOf(t models.MilestoneType) (models.MilestoneType, bool) {
	switch t {
	case models.MilestoneReviewExam:
		return models.MilestoneReviewLastTry, true
	case models.MilestoneUnitExam:
		return models.MilestoneUnitLastTry, true
	case models.MilestoneFinalExam:
		return models.MilestoneFinalLastTry, true
	}
	return "", false
}

// ExamTypeOf maps a primary milestone type to the exam type that completes it.
func ExamTypeOf(t models.MilestoneType) (models.ExamType, bool) {
	switch t {
	case models.MilestoneReviewExam:
		return models.ExamTypeReview, true
	case models.MilestoneUnitExam:
		return models.ExamTypeUnit, true
	case models.MilestoneMidterm:
		return models.ExamTypeMidterm, true
	case models.MilestoneFinalExam:
		return models.ExamTypeFinal, true
	}
	return "", false
}
