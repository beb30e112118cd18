// Package timetableview renders a session's TimeTable as an svg grid pushed
// incrementally to a browser client. Grounded on the teacher's
// cell_views.ValueFunction (isometric value-surface plot): the polygon
// projection there doesn't fit a two-axis room/period grid with no third
// value dimension to project, so this adapts the same wire-format and
// Parse/onUpdate shape down to a flat rect grid instead of a projected
// surface.
package timetableview

import (
	"fmt"
	"html/template"
	"strings"

	"acotimetable/internal/timetable"

	channerics "github.com/niceyeti/channerics/channels"

	"acotimetable/server/fastview"
)

const cellDim = 60 // pixels

// TimeTableView pushes ele-updates for one svg grid of cells.
type TimeTableView struct {
	id      string
	rooms   int
	periods int
	updates <-chan []fastview.EleUpdate
}

// New returns a view that redraws whenever a TimeTable arrives on tables.
func New(done <-chan struct{}, rooms, periods int, tables <-chan *timetable.TimeTable) *TimeTableView {
	id := "timetable"
	if strings.Contains(id, "-") {
		fmt.Println("WARNING: hyphenated ids interfere with html/template's `template` directive")
	}
	v := &TimeTableView{id: template.HTMLEscapeString(id), rooms: rooms, periods: periods}
	v.updates = channerics.Convert(done, tables, v.onUpdate)
	return v
}

// Updates returns the channel of ele-updates for this view.
func (v *TimeTableView) Updates() <-chan []fastview.EleUpdate {
	return v.updates
}

func cellEleID(room, period int) string {
	return fmt.Sprintf("cell-%d-%d", room, period)
}

func (v *TimeTableView) onUpdate(tt *timetable.TimeTable) (ops []fastview.EleUpdate) {
	for _, cell := range tt.Cells() {
		label := ""
		fill := "#FFFFFF"
		if !cell.Blank() {
			label = cell.ClassName
			fill = cell.Color
		}
		ops = append(ops, fastview.EleUpdate{
			EleId: cellEleID(cell.Room, cell.Period),
			Ops: []fastview.Op{
				{Key: "fill", Value: fill},
				{Key: "textContent", Value: label},
			},
		})
	}
	return
}

// Parse builds the svg grid template: one rect per (room, period) cell,
// room increasing downward, period increasing rightward. There is no
// separate label element; onUpdate's textContent op targets the rect itself.
func (v *TimeTableView) Parse(t *template.Template) (name string, err error) {
	name = v.id
	width := v.periods * cellDim
	height := v.rooms * cellDim

	_, err = t.Funcs(template.FuncMap{
		"mult":  func(i, j int) int { return i * j },
		"add":   func(i, j int) int { return i + j },
		"slice": func(items ...int) []int { return items },
	}).Parse(
		`{{ define "` + name + `" }}
		<div style="padding:20px;">
			<svg id="` + v.id + `" xmlns="http://www.w3.org/2000/svg"
				width="` + fmt.Sprintf("%d", width) + `px" height="` + fmt.Sprintf("%d", height) + `px"
				style="shape-rendering: crispEdges; stroke: lightgrey; stroke-width: 1;">
				{{ range $room := ` + rangeInts(v.rooms) + ` }}
					{{ range $period := ` + rangeInts(v.periods) + ` }}
						<g>
							<rect id="` + `{{ "cell-" }}{{ $room }}-{{ $period }}` + `"
								x="{{ mult $period ` + fmt.Sprintf("%d", cellDim) + ` }}"
								y="{{ mult $room ` + fmt.Sprintf("%d", cellDim) + ` }}"
								width="` + fmt.Sprintf("%d", cellDim) + `" height="` + fmt.Sprintf("%d", cellDim) + `"
								fill="#FFFFFF" />
						</g>
					{{ end }}
				{{ end }}
			</svg>
		</div>
		{{ end }}`)
	return
}

// rangeInts renders a template pipeline literal for {{ range }} over
// [0,n) — html/template has no native integer range, so the index set is
// baked into the template text at Parse time instead of computed per-request.
func rangeInts(n int) string {
	var b strings.Builder
	b.WriteString("(slice")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, " %d", i)
	}
	b.WriteString(")")
	return b.String()
}
