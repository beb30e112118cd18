// Package ingest loads the four CSV tables that describe a scheduling
// problem (teachers, rooms, student groups, classes) into a models.Input.
// This is the one corner of the system that crosses outside the process's
// own serialization format, grounded on original_source/src-tauri/src/input.rs.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"acotimetable/internal/models"
)

// ErrIngestion wraps every malformed-row or unknown-reference failure from
// the CSV readers. The original panicked on these (e.g. "teacher not
// found"); surfacing an error instead keeps this package's failures
// recoverable by its caller.
type ErrIngestion struct {
	File string
	Row  int
	Msg  string
}

func (e *ErrIngestion) Error() string {
	return fmt.Sprintf("ingest: %s row %d: %s", e.File, e.Row, e.Msg)
}

func newErr(file string, row int, format string, args ...interface{}) *ErrIngestion {
	return &ErrIngestion{File: file, Row: row, Msg: fmt.Sprintf(format, args...)}
}

// FromDir reads teachers.csv, rooms.csv, student_groups.csv and classes.csv
// from dir, in that order (classes.csv references the other three by name
// and must be read last).
func FromDir(dir string) (*models.Input, error) {
	teachers, err := readTeachers(filepath.Join(dir, "teachers.csv"))
	if err != nil {
		return nil, err
	}
	rooms, err := readRooms(filepath.Join(dir, "rooms.csv"))
	if err != nil {
		return nil, err
	}
	groups, err := readStudentGroups(filepath.Join(dir, "student_groups.csv"))
	if err != nil {
		return nil, err
	}
	classes, err := readClasses(filepath.Join(dir, "classes.csv"), teachers, rooms, groups)
	if err != nil {
		return nil, err
	}
	return &models.Input{
		Classes:       classes,
		Rooms:         rooms,
		Teachers:      teachers,
		StudentGroups: groups,
	}, nil
}

func openReader(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: %w", err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r, f, nil
}

// readTeachers expects columns: id, name.
func readTeachers(path string) ([]models.Teacher, error) {
	r, f, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []models.Teacher
	for row := 0; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: teachers.csv: %w", err)
		}
		if len(record) < 2 {
			return nil, newErr("teachers.csv", row, "expected 2 columns, got %d", len(record))
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, newErr("teachers.csv", row, "bad id %q: %v", record[0], err)
		}
		out = append(out, models.Teacher{ID: id, Name: strings.TrimSpace(record[1]), Index: row})
	}
	return out, nil
}

// readRooms expects columns: id, name, capacity.
func readRooms(path string) ([]models.Room, error) {
	r, f, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []models.Room
	for row := 0; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: rooms.csv: %w", err)
		}
		if len(record) < 3 {
			return nil, newErr("rooms.csv", row, "expected 3 columns, got %d", len(record))
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, newErr("rooms.csv", row, "bad id %q: %v", record[0], err)
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, newErr("rooms.csv", row, "bad capacity %q: %v", record[2], err)
		}
		out = append(out, models.Room{ID: id, Name: strings.TrimSpace(record[1]), Capacity: capacity})
	}
	return out, nil
}

// readStudentGroups expects columns: id, index, name (the original keeps an
// explicit index column here rather than deriving it from row order).
func readStudentGroups(path string) ([]models.StudentGroup, error) {
	r, f, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []models.StudentGroup
	for row := 0; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: student_groups.csv: %w", err)
		}
		if len(record) < 3 {
			return nil, newErr("student_groups.csv", row, "expected 3 columns, got %d", len(record))
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, newErr("student_groups.csv", row, "bad id %q: %v", record[0], err)
		}
		index, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, newErr("student_groups.csv", row, "bad index %q: %v", record[1], err)
		}
		out = append(out, models.StudentGroup{ID: id, Index: index, Name: strings.TrimSpace(record[2])})
	}
	return out, nil
}

// readClasses expects columns: id, name, teacher names (comma-separated),
// candidate room names (comma-separated), student group names
// (comma-separated), num_students, serial_size. The last column is this
// project's addition: the original computed serial size elsewhere, but
// spec.md §3 requires it as part of a Class's immutable data, so it is
// ingested explicitly here.
func readClasses(path string, teachers []models.Teacher, rooms []models.Room, groups []models.StudentGroup) ([]models.Class, error) {
	r, f, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	teacherIndex := indexByName(func(i int) string { return teachers[i].Name }, len(teachers))
	roomIndex := indexByName(func(i int) string { return rooms[i].Name }, len(rooms))
	groupIndex := indexByName(func(i int) string { return groups[i].Name }, len(groups))

	var out []models.Class
	for row := 0; ; row++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: classes.csv: %w", err)
		}
		if len(record) < 7 {
			return nil, newErr("classes.csv", row, "expected 7 columns, got %d", len(record))
		}

		id, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, newErr("classes.csv", row, "bad id %q: %v", record[0], err)
		}
		name := strings.TrimSpace(record[1])

		teacherIdxs, err := resolveNames(record[2], teacherIndex)
		if err != nil {
			return nil, newErr("classes.csv", row, "teacher not found: %v", err)
		}
		roomIdxs, err := resolveNames(record[3], roomIndex)
		if err != nil {
			return nil, newErr("classes.csv", row, "room not found: %v", err)
		}
		groupIdxs, err := resolveNames(record[4], groupIndex)
		if err != nil {
			return nil, newErr("classes.csv", row, "student_group not found: %v", err)
		}

		numStudents, err := strconv.Atoi(strings.TrimSpace(record[5]))
		if err != nil {
			return nil, newErr("classes.csv", row, "bad num_students %q: %v", record[5], err)
		}
		serialSize, err := strconv.Atoi(strings.TrimSpace(record[6]))
		if err != nil {
			return nil, newErr("classes.csv", row, "bad serial_size %q: %v", record[6], err)
		}
		if serialSize < 1 {
			return nil, newErr("classes.csv", row, "serial_size must be >= 1, got %d", serialSize)
		}

		out = append(out, models.Class{
			ID:                   id,
			Name:                 name,
			Index:                row,
			SerialSize:           serialSize,
			NumStudents:          numStudents,
			TeacherIndexes:       teacherIdxs,
			StudentGroupIndexes:  groupIdxs,
			RoomCandidateIndexes: roomIdxs,
		})
	}
	return out, nil
}

func indexByName(nameOf func(i int) string, n int) map[string]int {
	m := make(map[string]int, n)
	for i := 0; i < n; i++ {
		m[nameOf(i)] = i
	}
	return m
}

func resolveNames(field string, byName map[string]int) ([]int, error) {
	var out []int
	for _, name := range strings.Split(field, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		idx, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%q", name)
		}
		out = append(out, idx)
	}
	return out, nil
}
