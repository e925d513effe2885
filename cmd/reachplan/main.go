// Command reachplan is a thin demonstration CLI wiring a JSON scenario
// file to the reach engine and printing the resulting drivable areas.
// Scenario-file parsing is intentionally minimal: this is ambient
// scaffolding around the library, not a production scenario format.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"go.viam.com/reachplan/collision"
	"go.viam.com/reachplan/config"
	"go.viam.com/reachplan/corridor"
	"go.viam.com/reachplan/frame"
	"go.viam.com/reachplan/geometry"
	"go.viam.com/reachplan/logging"
	"go.viam.com/reachplan/reach"
	"go.viam.com/reachplan/scenario"
)

// rectInput is the JSON shape of one axis-aligned obstacle.
type rectInput struct {
	XMin, YMin, XMax, YMax float64
}

// scenarioFile is the on-disk shape consumed by the `compute` command.
// It bundles what the scenario, vehicle-parameter, and initial-state
// collaborators would otherwise supply, since this repo treats those as
// external concerns.
type scenarioFile struct {
	DTMillis        int64                  `json:"dt_millis"`
	StepStart       int                    `json:"step_start"`
	StepEnd         int                    `json:"step_end"`
	StaticBoxes     []rectInput            `json:"static_obstacles"`
	GridSize        float64                `json:"grid_size"`
	GridSize2nd     float64                `json:"grid_size_2nd"`
	RadiusTerm      float64                `json:"radius_terminal_split"`
	NumThreads      int                    `json:"num_threads"`
	Prune           bool                   `json:"prune"`
	InflationMode   scenario.InflationMode `json:"inflation_mode"`
	ConsiderTraffic bool                   `json:"consider_traffic"`

	// CoordinateSystem selects between the Cartesian and curvilinear
	// working frame. Curvilinear mode rasterizes the obstacle world
	// once, up front, via a straight-reference-path frame; FrameHalfWidth
	// and RasterStep are ignored in Cartesian mode.
	CoordinateSystem config.CoordinateSystemKind `json:"coordinate_system"`
	FrameHalfWidth   float64                     `json:"frame_half_width"`
	RasterStep       float64                     `json:"raster_step"`

	Vehicle scenario.VehicleParameters `json:"vehicle"`
	Initial scenario.InitialState      `json:"initial_state"`
}

func loadScenario(path string) (*scenarioFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var sf scenarioFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	return &sf, nil
}

func buildWorld(sf *scenarioFile) scenario.ObstacleWorld {
	shapes := make([]*geometry.Polygon, 0, len(sf.StaticBoxes))
	for _, b := range sf.StaticBoxes {
		shapes = append(shapes, geometry.FromRectangle(b.XMin, b.YMin, b.XMax, b.YMax))
	}
	return scenario.NewStaticWorld(shapes...)
}

func runCompute(c *cli.Context) error {
	sf, err := loadScenario(c.String("scenario"))
	if err != nil {
		return err
	}
	logger := logging.New(logging.INFO, logging.NewStdoutAppender())

	world := buildWorld(sf)
	provider := &scenario.FixedProvider{
		StepDT:        time.Duration(sf.DTMillis) * time.Millisecond,
		Start:         sf.StepStart,
		NumSteps:      sf.StepEnd - sf.StepStart,
		ObstacleWorld: world,
	}
	inflation := sf.Vehicle.InflationRadius(sf.InflationMode)

	var checker *collision.Checker
	if sf.CoordinateSystem == config.CVLN {
		halfWidth := sf.FrameHalfWidth
		if halfWidth <= 0 {
			halfWidth = 10
		}
		cs := frame.StraightLineFrame{HalfWidth: halfWidth}
		steps := make([]int, 0, sf.StepEnd-sf.StepStart+1)
		for t := sf.StepStart; t <= sf.StepEnd; t++ {
			steps = append(steps, t)
		}
		rasterized := frame.RasterizeObstacles(world, cs, steps, sf.RasterStep, logger)
		checker = collision.NewRasterized(rasterized, inflation, logger)
	} else {
		checker = collision.New(world, inflation, logger)
	}
	checker = checker.WithConsiderTraffic(sf.ConsiderTraffic)

	cfg := config.Configuration{
		CoordinateSystem:               sf.CoordinateSystem,
		SizeGrid:                       sf.GridSize,
		SizeGrid2nd:                    sf.GridSize2nd,
		RadiusTerminalSplit:            sf.RadiusTerm,
		NumThreads:                     sf.NumThreads,
		ModeInflation:                  sf.InflationMode,
		ModeRepartition:                config.RepartitionPrePost,
		PruneNodesNotReachingFinalStep: sf.Prune,
		ConsiderTraffic:                sf.ConsiderTraffic,
	}

	engine, err := reach.New(cfg, sf.Vehicle, sf.Initial, provider, checker, logger)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	if err := engine.Compute(context.Background(), sf.StepStart, sf.StepEnd); err != nil {
		return fmt.Errorf("computing reachable sets: %w", err)
	}

	type stepOutput struct {
		Step      int             `json:"step"`
		Rectangles []geometry.Rect `json:"drivable_area"`
	}
	var out []stepOutput
	for t := sf.StepStart; t <= sf.StepEnd; t++ {
		area, err := engine.DrivableAreaAt(t)
		if err != nil {
			return fmt.Errorf("reading step %d: %w", t, err)
		}
		out = append(out, stepOutput{Step: t, Rectangles: area})
	}

	if c.Bool("corridors") {
		reachSets := map[int][]*reach.Node{}
		for t := sf.StepStart; t <= sf.StepEnd; t++ {
			nodes, err := engine.ReachableSetAt(t)
			if err != nil {
				return fmt.Errorf("reading reach set at step %d: %w", t, err)
			}
			reachSets[t] = nodes
		}
		corridors, err := corridor.Extract(reachSets, sf.StepStart, sf.StepEnd, cfg.EffectiveCorridorCap(), corridor.Options{ToGoalRegion: true})
		if err != nil {
			return fmt.Errorf("extracting corridors: %w", err)
		}
		logger.Infof("extracted %d driving corridors", len(corridors))
	}

	if drops := engine.Diagnostics().Total(); drops > 0 {
		logger.Warnf("computation recorded %d non-fatal drops", drops)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func main() {
	app := &cli.App{
		Name:  "reachplan",
		Usage: "compute reachable sets and driving corridors for a planar vehicle scenario",
		Commands: []*cli.Command{
			{
				Name:  "compute",
				Usage: "run a reachable-set computation over a JSON scenario file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scenario", Required: true, Usage: "path to a scenario JSON file"},
					&cli.BoolFlag{Name: "corridors", Usage: "also extract and report driving corridors"},
				},
				Action: runCompute,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "reachplan:", err)
		os.Exit(1)
	}
}
