// Package server exposes the session.Manager's commands over HTTP and
// pushes view updates to a single connected browser over websocket.
// Grounded on the teacher's server.Server, generalized to front a
// session.Manager instead of a grid_world training loop.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"

	"acotimetable/internal/session"
	"acotimetable/server/fastview"
	"acotimetable/server/host"
)

// Server serves the timetable UI to a single browser page over a single
// websocket, same scope as the teacher's Server: a prototype host, not a
// multi-tenant web server.
type Server struct {
	addr    string
	mgr     *session.Manager
	host    *host.Host
	rootCtx context.Context
	classID int
}

// New builds a Server fronting mgr, publishing through h. classID selects
// which class's pheromone landscape is surfaced by the surface view.
func New(ctx context.Context, addr string, mgr *session.Manager, h *host.Host, classID int) *Server {
	return &Server{addr: addr, mgr: mgr, host: h, rootCtx: ctx, classID: classID}
}

// Serve registers handlers and blocks on http.ListenAndServe.
func (s *Server) Serve() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.HandleFunc("/ws", s.serveWebsocket)
	mux.HandleFunc("/api/run", s.handleRun)
	mux.HandleFunc("/api/lock", s.handleLock)
	mux.HandleFunc("/api/swap", s.handleSwap)
	mux.HandleFunc("/api/switch-lock", s.handleSwitchLock)
	mux.HandleFunc("/api/progress", s.handleProgress)

	if err := http.ListenAndServe(s.addr, mux); err != nil {
		return fmt.Errorf("server: serve: %w", err)
	}
	return nil
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, s.host); err != nil {
		_, _ = w.Write([]byte(err.Error()))
	}
}

func renderTemplate(w io.Writer, h *host.Host) error {
	t := template.New("index.html")
	tname, err := h.Parse(t)
	if err != nil {
		return err
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return err
	}
	return t.Execute(w, nil)
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	cli, err := fastview.NewClient(s.host.Updates(), w, r)
	if err != nil {
		return
	}
	if err := cli.Sync(); err != nil {
		fmt.Println("websocket client disconnected:", err)
	}
}

// handleRun runs run_once() and pushes the rendered TimeTable to the view.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	result, err := func() (interface{}, error) {
		tt, res, err := s.mgr.RunOnce(r.Context())
		if err != nil {
			return nil, err
		}
		s.host.PublishTable(r.Context(), tt)

		if sv, svErr := s.mgr.Solver(); svErr == nil {
			s.host.PublishSurface(r.Context(), sv, sv.Graph(), sv.Input(), s.classID)
		}
		return res, nil
	}()
	writeJSON(w, result, err)
}

// handleProgress reports the in-flight run's most recent iteration-best
// L_total, read
// without contending with the request goroutine driving RunOnce — net/http
// dispatches handlers on their own goroutines, so a tab can legitimately
// poll this mid-run.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	best, err := s.mgr.LiveBestTotal()
	writeJSON(w, map[string]float64{"best_total": best}, err)
}

// handleLock applies one_hot_pheromone(class, room, period) from query params.
func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	class, room, period, err := parseTriple(r)
	if err != nil {
		writeJSON(w, nil, err)
		return
	}
	err = s.mgr.OneHotPheromone(class, room, period)
	writeJSON(w, nil, err)
}

// handleSwap applies swap_cell(a, b) from query params "from" and "to".
func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	from, err := strconv.Atoi(r.URL.Query().Get("from"))
	if err != nil {
		writeJSON(w, nil, err)
		return
	}
	to, err := strconv.Atoi(r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, nil, err)
		return
	}
	err = s.mgr.SwapCell(from, to)
	if err == nil {
		if tt, ttErr := s.mgr.GetTable(); ttErr == nil {
			s.host.PublishTable(r.Context(), tt)
		}
	}
	writeJSON(w, nil, err)
}

// handleSwitchLock applies switch_lock(id) from query param "id".
func (s *Server) handleSwitchLock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		writeJSON(w, nil, err)
		return
	}
	err = s.mgr.SwitchLock(id)
	if err == nil {
		if tt, ttErr := s.mgr.GetTable(); ttErr == nil {
			s.host.PublishTable(r.Context(), tt)
		}
	}
	writeJSON(w, nil, err)
}

func parseTriple(r *http.Request) (class, room, period int, err error) {
	q := r.URL.Query()
	if class, err = strconv.Atoi(q.Get("class")); err != nil {
		return
	}
	if room, err = strconv.Atoi(q.Get("room")); err != nil {
		return
	}
	period, err = strconv.Atoi(q.Get("period"))
	return
}

func writeJSON(w http.ResponseWriter, v interface{}, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
