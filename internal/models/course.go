package models

// Paced one-credit courses, in catalog order.
const (
	CourseM117 = "M 117"
	CourseM118 = "M 118"
	CourseM124 = "M 124"
	CourseM125 = "M 125"
	CourseM126 = "M 126"
)

// PacedCourses lists every course that counts toward a student's pace.
var PacedCourses = []string{CourseM117, CourseM118, CourseM124, CourseM125, CourseM126}

// CourseRank returns the catalog position of a paced course.
func CourseRank(course string) (int, bool) {
	for i, c := range PacedCourses {
		if c == course {
			return i, true
		}
	}
	return len(PacedCourses), false
}

// IsPacedCourse reports whether course counts toward pace.
func IsPacedCourse(course string) bool {
	_, ok := CourseRank(course)
	return ok
}
