// Package pheromoneview renders the pheromone landscape for one class as an
// isometric value-surface plot, a direct transplant of the teacher's
// cell_views.ValueFunction (polygon projection, gradient fill, fixed
// translate transform) repurposed from "RL state value" to "placement probability" —
// exactly the reuse spec.md §6's closing sentence anticipates ("a gradient
// that reveals the pheromone landscape").
package pheromoneview

import (
	"fmt"
	"html/template"
	"math"
	"strings"
	"sync"

	"acotimetable/internal/aco/ant"
	"acotimetable/internal/aco/graph"
	"acotimetable/internal/models"

	channerics "github.com/niceyeti/channerics/channels"

	"acotimetable/server/fastview"
)

// Snapshot is the per-update input to this view: the best ant, its graph,
// the input, and the class whose landscape should be plotted.
type Snapshot struct {
	Ant     *ant.Ant
	Graph   *graph.Graph
	Input   *models.Input
	ClassID int
}

// cell is one (room, period) point on the surface, value = placement
// probability in [0,1].
type cell struct {
	Room, Period int
	Value        float64
}

// PheromoneView plots one class's landscape.
type PheromoneView struct {
	id              string
	rooms, periods  int
	updates         <-chan []fastview.EleUpdate
}

var (
	cellDim                 float64 = 60
	ang                             = math.Pi / 6
	sinAng, cosAng                  = math.Sin(ang), math.Cos(ang)
	width, height           float64
	xyscale, zscale         float64
	setViewParams sync.Once
)

func setParams(rooms, periods int) {
	width = float64(periods) * cellDim
	height = float64(rooms) * cellDim
	xyscale = cellDim
	zscale = cellDim * 2 // probabilities are small; exaggerate for visibility
}

func project(x, y, z float64) (float64, float64) {
	sx := (x - y) * cosAng * xyscale
	sy := (x+y)*sinAng*xyscale - z*zscale
	return sx, sy
}

// New returns a view that redraws whenever a Snapshot arrives. rooms and
// periods must match the dimensions of every Snapshot's Graph, since the
// polygon grid is rendered once by Parse and only updated (not rebuilt)
// thereafter.
func New(done <-chan struct{}, rooms, periods int, snapshots <-chan Snapshot) *PheromoneView {
	id := "pheromonesurface"
	v := &PheromoneView{id: template.HTMLEscapeString(id), rooms: rooms, periods: periods}
	v.updates = channerics.Convert(done, snapshots, v.onUpdate)
	return v
}

// Updates returns the channel of ele-updates for this view.
func (v *PheromoneView) Updates() <-chan []fastview.EleUpdate {
	return v.updates
}

func (v *PheromoneView) onUpdate(snap Snapshot) (ops []fastview.EleUpdate) {
	params := snap.Graph.Params()
	setViewParams.Do(func() { setParams(params.NumRooms, params.NumPeriods) })

	grid := make([][]cell, params.NumRooms)
	for r := range grid {
		grid[r] = make([]cell, params.NumPeriods)
		for p := range grid[r] {
			prob := snap.Ant.CellProbability(snap.Graph, snap.Input, snap.ClassID, r, p)
			grid[r][p] = cell{Room: r, Period: p, Value: prob}
		}
	}

	for r := 0; r < params.NumRooms-1; r++ {
		for p := 0; p < params.NumPeriods-1; p++ {
			a := grid[r+1][p]
			b := grid[r][p]
			c := grid[r][p+1]
			d := grid[r+1][p+1]

			ax, ay := project(float64(a.Room), float64(a.Period), a.Value)
			bx, by := project(float64(b.Room), float64(b.Period), b.Value)
			cx, cy := project(float64(c.Room), float64(c.Period), c.Value)
			dx, dy := project(float64(d.Room), float64(d.Period), d.Value)
			points := fmt.Sprintf("%d,%d %d,%d %d,%d %d,%d",
				int(ax), int(ay), int(bx), int(by), int(cx), int(cy), int(dx), int(dy))

			avg := (a.Value + b.Value + c.Value + d.Value) / 4
			fill := fmt.Sprintf("rgb(%d%%,0%%,%d%%)", int(100*avg), 100-int(100*avg))

			id := fmt.Sprintf("%d-%d-prob-polygon", r, p)
			ops = append(ops, fastview.EleUpdate{
				EleId: id,
				Ops: []fastview.Op{
					{Key: "points", Value: points},
					{Key: "fill", Value: fill},
				},
			})
		}
	}
	return
}

// Parse builds the svg polygon grid template. The polygon ids follow
// "<room>-<period>-prob-polygon"; Parse pre-renders every id the onUpdate
// pass can ever emit, since both the room and period counts are fixed for
// the life of a Solver, and onUpdate only ever mutates existing elements'
// attributes (per the fastview wire protocol), never creates new ones.
func (v *PheromoneView) Parse(t *template.Template) (name string, err error) {
	name = v.id
	var b strings.Builder
	fmt.Fprintf(&b, `{{ define "%s" }}<div style="padding:40px;"><svg id="%s" xmlns="http://www.w3.org/2000/svg" width="2000px" height="1200px" style="shape-rendering: crispEdges; stroke: lightgrey; stroke-width: 2;"><g transform="translate(700 200)">`, name, v.id)
	for r := 0; r < v.rooms-1; r++ {
		for p := 0; p < v.periods-1; p++ {
			fmt.Fprintf(&b, `<polygon id="%d-%d-prob-polygon" fill="black" fill-opacity="1.0" points="0,0 0,0 0,0 0,0" />`, r, p)
		}
	}
	b.WriteString(`</g></svg></div>{{ end }}`)
	_, err = t.Parse(b.String())
	return
}
