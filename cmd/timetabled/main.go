/*
timetabled hosts an Ant Colony Optimization university-timetable solver
behind a small HTTP+websocket UI: it ingests a problem from CSV, adapts a
Solver from it, runs it on request, and pushes the rendered TimeTable and
pheromone landscape to a single connected browser page in realtime.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"acotimetable/internal/config"
	"acotimetable/internal/session"
	"acotimetable/server"
	"acotimetable/server/host"
)

var (
	csvDir     *string
	configPath *string
	addr       *string
	classID    *int
)

// TODO: per 12-factor rules these should be overridable from env too; KISS for now.
func init() {
	csvDir = flag.String("csv-dir", "./csvdata", "directory containing teachers.csv, rooms.csv, student_groups.csv, classes.csv")
	configPath = flag.String("config", "./config.yaml", "path to a Parameters yaml file; if absent, defaults are sized to the ingested Input")
	addr = flag.String("addr", ":8080", "http listen address")
	classID = flag.Int("class", 0, "class index whose pheromone landscape is surfaced")
	flag.Parse()
}

func runApp() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	mgr := session.New()
	if err := mgr.SetInput(*csvDir); err != nil {
		return fmt.Errorf("timetabled: %w", err)
	}

	// AdaptInputDefault sizes Parameters from the ingested tables; a caller
	// with a Parameters file at the -config path gets that instead.
	if _, err := os.Stat(*configPath); err == nil {
		params, err := config.FromYAML(*configPath)
		if err != nil {
			return fmt.Errorf("timetabled: %w", err)
		}
		if err := mgr.AdaptInput(*params); err != nil {
			return fmt.Errorf("timetabled: %w", err)
		}
	} else if err := mgr.AdaptInputDefault(); err != nil {
		return fmt.Errorf("timetabled: %w", err)
	}

	periods, err := mgr.GetPeriods()
	if err != nil {
		return fmt.Errorf("timetabled: %w", err)
	}
	rooms, err := mgr.GetRooms()
	if err != nil {
		return fmt.Errorf("timetabled: %w", err)
	}

	h := host.New(ctx, rooms, periods)
	srv := server.New(ctx, *addr, mgr, h, *classID)

	fmt.Println("timetabled listening on", *addr)
	return srv.Serve()
}

func main() {
	if err := runApp(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
