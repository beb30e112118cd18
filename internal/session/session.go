// Package session is the process-wide, guarded handle the UI host drives:
// three mutex-protected slots (Input, Solver, TimeTable) and the command set
// spec.md §6 exposes over them. Grounded on the teacher's single-client
// Server holding a mutex-free "lastUpdate" snapshot, generalized here to the
// three-slot model spec.md requires, and on
// original_source/src-tauri/src/main.rs's Tauri command set
// (handle_set_input/handle_adapt_input/handle_aco_run_once/...).
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"acotimetable/internal/aco/ant"
	"acotimetable/internal/aco/solver"
	"acotimetable/internal/config"
	"acotimetable/internal/ingest"
	"acotimetable/internal/models"
	"acotimetable/internal/timetable"
)

// Sentinel errors for the "command invoked out of order" kinds: the three
// from spec.md §7 plus ErrNoTimeTable for table commands issued before a run.
var (
	ErrNoInput    = errors.New("session: no input loaded")
	ErrNoSolver   = errors.New("session: no solver adapted")
	ErrNoBestAnt  = errors.New("session: no best ant produced yet")
	ErrNoTimeTable = errors.New("session: no timetable rendered yet")
)

// RunThreshold is the early-exit L_total spec.md §4.5 calls "effectively
// penalty-free".
const RunThreshold = 1.5

// RunOnceBound is the default iteration cap for a single run_once() command.
const RunOnceBound = 10000

// Manager holds the three process-wide slots behind a single shared mutex.
// The lock is acquired and released within a single method call; it is not
// held across a long-running RunACOTimes.
type Manager struct {
	mu sync.Mutex

	input *models.Input
	sv    *solver.Solver
	tt    *timetable.TimeTable
}

// New returns an empty Manager: no input, solver, or rendered table yet.
func New() *Manager {
	return &Manager{}
}

// SetInput loads a problem from CSV files under dir into the Input slot.
func (m *Manager) SetInput(dir string) error {
	in, err := ingest.FromDir(dir)
	if err != nil {
		return fmt.Errorf("session: set_input: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.input = in
	m.sv = nil
	m.tt = nil
	return nil
}

// AdaptInput materializes a fresh Solver from the current Input under the
// given Parameters.
func (m *Manager) AdaptInput(params config.Parameters) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.input == nil {
		return ErrNoInput
	}
	sv, err := solver.New(params, m.input)
	if err != nil {
		return fmt.Errorf("session: adapt_input: %w", err)
	}
	m.sv = sv
	m.tt = nil
	return nil
}

// AdaptInputDefault is AdaptInput using config.Default sized to the current
// Input's table lengths.
func (m *Manager) AdaptInputDefault() error {
	m.mu.Lock()
	input := m.input
	m.mu.Unlock()
	if input == nil {
		return ErrNoInput
	}
	params := config.Default(len(input.Classes), len(input.Rooms), len(input.Teachers), len(input.StudentGroups))
	return m.AdaptInput(params)
}

// RunOnce runs up to RunOnceBound iterations (or until L_total(best) <=
// RunThreshold), then renders and stores a TimeTable from the best ant.
func (m *Manager) RunOnce(ctx context.Context) (*timetable.TimeTable, solver.Result, error) {
	m.mu.Lock()
	sv := m.sv
	m.mu.Unlock()
	if sv == nil {
		return nil, solver.Result{}, ErrNoSolver
	}

	result, err := sv.RunUntilThreshold(ctx, RunOnceBound, RunThreshold)
	if err != nil && result.Reason != "context" {
		return nil, result, fmt.Errorf("session: run_once: %w", err)
	}

	bestAnt, _, ok := sv.BestAnt()
	if !ok {
		return nil, result, ErrNoBestAnt
	}

	m.mu.Lock()
	tt := timetable.Render(bestAnt, sv.Graph(), sv.Input())
	m.tt = tt
	m.mu.Unlock()
	return tt, result, nil
}

// OneHotPheromone applies a user lock bias to the current Solver.
func (m *Manager) OneHotPheromone(class, room, period int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sv == nil {
		return ErrNoSolver
	}
	m.sv.OneHotPheromone(class, room, period)
	return nil
}

// ReadCells returns the cells of the currently rendered TimeTable.
func (m *Manager) ReadCells() ([]timetable.Cell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tt == nil {
		return nil, ErrNoTimeTable
	}
	return m.tt.Cells(), nil
}

// GetTable returns the currently rendered TimeTable.
func (m *Manager) GetTable() (*timetable.TimeTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tt == nil {
		return nil, ErrNoTimeTable
	}
	return m.tt, nil
}

// GetPeriods returns the Solver's configured period count.
func (m *Manager) GetPeriods() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sv == nil {
		return 0, ErrNoSolver
	}
	return m.sv.Params().NumPeriods, nil
}

// GetRooms returns the Solver's configured room count.
func (m *Manager) GetRooms() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sv == nil {
		return 0, ErrNoSolver
	}
	return m.sv.Params().NumRooms, nil
}

// SwapCell edits the rendered TimeTable directly, per spec.md §6 ("UI edits
// on the rendered TimeTable, not on the solver state directly").
func (m *Manager) SwapCell(fromID, toID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tt == nil {
		return ErrNoTimeTable
	}
	return m.tt.SwapCell(fromID, toID)
}

// SwitchLock toggles a rendered cell's lock flag, recomputing its display
// color from the current best ant/graph.
func (m *Manager) SwitchLock(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tt == nil {
		return ErrNoTimeTable
	}
	if m.sv == nil {
		return ErrNoSolver
	}
	bestAnt, _, ok := m.sv.BestAnt()
	if !ok {
		return ErrNoBestAnt
	}
	return m.tt.SwitchLock(id, bestAnt, m.sv.Graph(), m.sv.Input())
}

// BestAnt exposes the most recent best ant, e.g. for a view that needs to
// recompute CellProbability on demand.
func (m *Manager) BestAnt() (*ant.Ant, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sv == nil {
		return nil, false
	}
	a, _, ok := m.sv.BestAnt()
	return a, ok
}

// LiveBestTotal reads the current solver's most recent iteration-best
// L_total (+Inf before the first iteration completes) without
// blocking on the Manager's mutex for longer than the lookup of the Solver
// pointer itself, so a progress-polling HTTP handler never waits behind a
// long-running RunOnce.
func (m *Manager) LiveBestTotal() (float64, error) {
	m.mu.Lock()
	sv := m.sv
	m.mu.Unlock()
	if sv == nil {
		return 0, ErrNoSolver
	}
	return sv.LiveBestTotal(), nil
}

// Solver exposes the current Solver, e.g. so a view can pull the Graph and
// Input needed to recompute a pheromone landscape.
func (m *Manager) Solver() (*solver.Solver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sv == nil {
		return nil, ErrNoSolver
	}
	return m.sv, nil
}
