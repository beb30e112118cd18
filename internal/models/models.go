// Package models holds the static problem data for a timetabling run:
// classes, rooms, teachers and student groups, as ingested from outside
// the core (see internal/ingest). Nothing in this package depends on the
// ACO solver; it is pure data.
package models

// Teacher is a single instructor who may be required by any number of classes.
type Teacher struct {
	ID    int
	Name  string
	Index int
}

// StudentGroup is a cohort of students attending classes together.
type StudentGroup struct {
	ID    int
	Name  string
	Index int
}

// Room is a physical space a class can be scheduled into.
type Room struct {
	ID       int
	Name     string
	Capacity int
}

// Class is one unit of teaching to be scheduled: it occupies SerialSize
// consecutive periods in some room, needs its teachers and student groups
// free for that span, and must hold NumStudents attendees.
type Class struct {
	ID         int
	Name       string
	Index      int
	SerialSize int
	NumStudents int

	TeacherIndexes      []int
	StudentGroupIndexes []int

	// RoomCandidateIndexes is parsed from ingestion but never consulted by
	// the search; it is an annotation channel reserved for a future
	// room-affinity policy (see spec Open Question c).
	RoomCandidateIndexes []int
}

// Input bundles the four tables that fully describe one scheduling problem.
type Input struct {
	Classes       []Class
	Rooms         []Room
	Teachers      []Teacher
	StudentGroups []StudentGroup
}

// Clone returns a deep-enough copy of the Input for a Solver to own
// independently of whatever produced it (the session's Input slot may be
// replaced or mutated by a later SetInput call).
func (in *Input) Clone() *Input {
	out := &Input{
		Classes:       make([]Class, len(in.Classes)),
		Rooms:         make([]Room, len(in.Rooms)),
		Teachers:      make([]Teacher, len(in.Teachers)),
		StudentGroups: make([]StudentGroup, len(in.StudentGroups)),
	}
	copy(out.Rooms, in.Rooms)
	copy(out.Teachers, in.Teachers)
	copy(out.StudentGroups, in.StudentGroups)
	for i, c := range in.Classes {
		cc := c
		cc.TeacherIndexes = append([]int(nil), c.TeacherIndexes...)
		cc.StudentGroupIndexes = append([]int(nil), c.StudentGroupIndexes...)
		cc.RoomCandidateIndexes = append([]int(nil), c.RoomCandidateIndexes...)
		out.Classes[i] = cc
	}
	return out
}

// RoomPeriod is a (room, starting-period) placement for one class.
type RoomPeriod struct {
	Room   int
	Period int
}
