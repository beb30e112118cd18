// Package timetable renders the best ant's assignment as a room x period
// grid for display, and supports the UI edits (swap, lock toggle) that act
// on that rendered grid rather than on solver state directly. Grounded on
// original_source/src-tauri/src/algorithm/time_table.rs.
package timetable

import (
	"fmt"
	"math"

	"acotimetable/internal/aco/ant"
	"acotimetable/internal/aco/graph"
	"acotimetable/internal/models"
)

// lockedColor is the fixed tint for a cell the user has pinned in place,
// taking priority over its pheromone-derived color.
const lockedColor = "#AAAAFF"

// Cell is one (room, period) slot: either blank, or occupied by a class.
type Cell struct {
	Room, Period int
	ClassID      int // -1 when blank
	ClassName    string
	IsLocked     bool
	Color        string
}

// Blank reports whether this cell holds no class.
func (c Cell) Blank() bool { return c.ClassID < 0 }

// TimeTable is a flat room x period grid of cells, indexed id = room*P + period.
type TimeTable struct {
	numRooms, numPeriods int
	cells                []Cell
}

func cellID(room, period, numPeriods int) int { return room*numPeriods + period }

// Render builds a TimeTable from the best ant's completed assignment. Every
// occupied cell's color is seeded from that ant's pheromone landscape via
// PheromoneColor, then overridden to lockedColor if the graph has that class
// locked to this exact cell.
func Render(a *ant.Ant, g *graph.Graph, input *models.Input) *TimeTable {
	params := g.Params()
	tt := &TimeTable{numRooms: params.NumRooms, numPeriods: params.NumPeriods}
	tt.cells = make([]Cell, params.NumRooms*params.NumPeriods)
	for r := 0; r < params.NumRooms; r++ {
		for p := 0; p < params.NumPeriods; p++ {
			tt.cells[cellID(r, p, params.NumPeriods)] = Cell{Room: r, Period: p, ClassID: -1}
		}
	}

	for classID, rp := range a.CRP() {
		class := input.Classes[classID]
		locked := false
		if lockRP, ok := g.Lock(classID); ok {
			locked = lockRP.Room == rp.Room && lockRP.Period == rp.Period
		}
		color := PheromoneColor(a, g, input, classID, rp.Room, rp.Period)
		if locked {
			color = lockedColor
		}
		tt.cells[cellID(rp.Room, rp.Period, params.NumPeriods)] = Cell{
			Room:      rp.Room,
			Period:    rp.Period,
			ClassID:   classID,
			ClassName: class.Name,
			IsLocked:  locked,
			Color:     color,
		}
	}
	return tt
}

// PheromoneColor maps a cell's sampling probability under the best ant to an
// "#ff{hex}{hex}ff" color whose green and blue channels are 255*(1-p): white
// (#ffffffff) at probability 0, fading to red (#ff0000ff) at probability 1,
// the formula from get_pheromone_color.
func PheromoneColor(a *ant.Ant, g *graph.Graph, input *models.Input, classID, room, period int) string {
	prob := a.CellProbability(g, input, classID, room, period)
	shade := int(math.Round(255.0 * (1 - prob)))
	if shade < 0 {
		shade = 0
	} else if shade > 255 {
		shade = 255
	}
	return fmt.Sprintf("#ff%02x%02xff", shade, shade)
}

// Rooms returns the number of rooms this grid spans.
func (tt *TimeTable) Rooms() int { return tt.numRooms }

// Periods returns the number of periods this grid spans.
func (tt *TimeTable) Periods() int { return tt.numPeriods }

// Cells returns the flat cell slice, id = room*Periods() + period.
func (tt *TimeTable) Cells() []Cell { return tt.cells }

// Cell returns the cell at (room, period).
func (tt *TimeTable) Cell(room, period int) Cell {
	return tt.cells[cellID(room, period, tt.numPeriods)]
}

// ErrBlankSource is returned by SwapCell when the dragged-from cell is blank;
// there is no class to move.
var ErrBlankSource = fmt.Errorf("timetable: source cell is blank")

// SwapCell moves the class occupying fromID into toID, leaving fromID blank,
// and locks the moved class at its new position — this is an edit to the
// rendered grid only (spec.md §6: "not on the solver state directly"); a
// caller that wants this reflected in future constructions must separately
// call Solver.OneHotPheromone. Grounded on handle_lock_cell.
func (tt *TimeTable) SwapCell(fromID, toID int) error {
	from := tt.cells[fromID]
	if from.Blank() {
		return ErrBlankSource
	}
	to := tt.cells[toID]

	moved := from
	moved.Room, moved.Period = to.Room, to.Period
	moved.IsLocked = true
	moved.Color = lockedColor

	vacated := Cell{Room: from.Room, Period: from.Period, ClassID: -1}

	tt.cells[toID] = moved
	tt.cells[fromID] = vacated
	return nil
}

// ErrNoClass is returned by SwitchLock when id names a blank cell.
var ErrNoClass = fmt.Errorf("timetable: cell holds no class")

// SwitchLock toggles a cell's lock flag and recomputes its display color,
// grounded on handle_switch_lock. When unlocking, the color reverts to the
// pheromone-derived shade for that cell under the given ant/graph.
func (tt *TimeTable) SwitchLock(id int, a *ant.Ant, g *graph.Graph, input *models.Input) error {
	cell := tt.cells[id]
	if cell.Blank() {
		return ErrNoClass
	}
	cell.IsLocked = !cell.IsLocked
	if cell.IsLocked {
		cell.Color = lockedColor
	} else {
		cell.Color = PheromoneColor(a, g, input, cell.ClassID, cell.Room, cell.Period)
	}
	tt.cells[id] = cell
	return nil
}
