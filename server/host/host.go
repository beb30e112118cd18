// Package host is the main page's container for all view components: it
// wires their channels, fans their ele-updates into one throttled stream,
// and builds the bootstrap html/template, grounded on the teacher's
// root_view.RootView.
package host

import (
	"context"
	"html/template"
	"time"

	"acotimetable/internal/aco/graph"
	"acotimetable/internal/aco/solver"
	"acotimetable/internal/models"
	"acotimetable/internal/timetable"
	"acotimetable/server/fastview"
	"acotimetable/server/pheromoneview"
	"acotimetable/server/timetableview"

	channerics "github.com/niceyeti/channerics/channels"
)

// Host owns the view components and the channels that feed them.
type Host struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate

	tableUpdates    chan *timetable.TimeTable
	snapshotUpdates chan pheromoneview.Snapshot
}

// New builds the timetable grid view and the pheromone landscape view for
// the given dimensions, and wires their combined ele-update stream. Each
// view is built through a fastview.ViewBuilder, the teacher's pattern for
// wiring a source channel through a view-model conversion into one or more
// ViewComponents — here the conversion is the identity, since PublishTable
// and PublishSurface already hand over exactly the view-model each view
// wants.
func New(ctx context.Context, rooms, periods int) *Host {
	tableUpdates := make(chan *timetable.TimeTable)
	snapshotUpdates := make(chan pheromoneview.Snapshot)

	tableViews, err := fastview.NewViewBuilder[*timetable.TimeTable, *timetable.TimeTable]().
		WithModel(tableUpdates, func(tt *timetable.TimeTable) *timetable.TimeTable { return tt }).
		WithView(func(done <-chan struct{}, vm <-chan *timetable.TimeTable) fastview.ViewComponent {
			return timetableview.New(done, rooms, periods, vm)
		}).
		WithContext(ctx).
		Build()
	if err != nil {
		// Unreachable: WithModel and WithView are always both called above.
		panic(err)
	}

	surfaceViews, err := fastview.NewViewBuilder[pheromoneview.Snapshot, pheromoneview.Snapshot]().
		WithModel(snapshotUpdates, func(s pheromoneview.Snapshot) pheromoneview.Snapshot { return s }).
		WithView(func(done <-chan struct{}, vm <-chan pheromoneview.Snapshot) fastview.ViewComponent {
			return pheromoneview.New(done, rooms, periods, vm)
		}).
		WithContext(ctx).
		Build()
	if err != nil {
		panic(err)
	}

	views := append(tableViews, surfaceViews...)
	updates := fanIn(ctx.Done(), views)

	return &Host{
		views:           views,
		updates:         updates,
		tableUpdates:    tableUpdates,
		snapshotUpdates: snapshotUpdates,
	}
}

// Updates returns the combined, throttled ele-update stream for all views.
func (h *Host) Updates() <-chan []fastview.EleUpdate {
	return h.updates
}

// PublishTable pushes a freshly rendered TimeTable to the grid view.
// Non-blocking: dropped if the view isn't ready to receive, since only the
// latest render matters (spec.md's TimeTable rendering is idempotent).
func (h *Host) PublishTable(ctx context.Context, tt *timetable.TimeTable) {
	select {
	case h.tableUpdates <- tt:
	case <-ctx.Done():
	default:
	}
}

// PublishSurface pushes a fresh pheromone snapshot for classID to the
// surface view.
func (h *Host) PublishSurface(ctx context.Context, sv *solver.Solver, g *graph.Graph, input *models.Input, classID int) {
	bestAnt, _, ok := sv.BestAnt()
	if !ok {
		return
	}
	snap := pheromoneview.Snapshot{Ant: bestAnt, Graph: g, Input: input, ClassID: classID}
	select {
	case h.snapshotUpdates <- snap:
	case <-ctx.Done():
	default:
	}
}

// Parse builds the main page: websocket bootstrap script plus every view's
// template nested inside it.
func (h *Host) Parse(parent *template.Template) (name string, err error) {
	viewTemplates := make([]string, 0, len(h.views))
	for _, v := range h.views {
		tname, parseErr := v.Parse(parent)
		if parseErr != nil {
			return "", parseErr
		}
		viewTemplates = append(viewTemplates, tname)
	}

	var bodySpec string
	for _, tname := range viewTemplates {
		bodySpec += `{{ template "` + tname + `" . }}`
	}

	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + window.location.host + "/ws");
				ws.onopen = function (event) { console.log("socket opened") };
				ws.onerror = function (event) { console.log("socket error: ", event) };
				ws.onmessage = function (event) {
					const items = JSON.parse(event.data);
					for (const update of items) {
						const ele = document.getElementById(update.EleId);
						if (!ele) { continue; }
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value);
							}
						}
					}
				}
			</script>
		</head>
		<body>
		` + bodySpec + `
		</body>
	</html>
	{{ end }}
	`
	_, err = parent.Parse(indexTemplate)
	return
}

// fanIn merges every view's ele-update channel and batches bursts within a
// fixed window, overwriting redundant per-element updates so only the
// latest value per element ships.
func fanIn(done <-chan struct{}, views []fastview.ViewComponent) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, v := range views {
		inputs[i] = v.Updates()
	}
	return batchify(done, channerics.Merge(done, inputs...), 20*time.Millisecond)
}

func batchify(done <-chan struct{}, source <-chan []fastview.EleUpdate, rate time.Duration) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, u := range updates {
				data[u.EleId] = u
			}
			if time.Since(last) > rate && len(updates) > 0 {
				select {
				case output <- valuesOf(data):
					data = map[string]fastview.EleUpdate{}
					last = time.Now()
				case <-done:
					return
				}
			}
		}
	}()

	return output
}

func valuesOf(m map[string]fastview.EleUpdate) []fastview.EleUpdate {
	out := make([]fastview.EleUpdate, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
