package solver

import (
	"fmt"
	"time"

	"github.com/nextmv-io/sdk/mip"
	"github.com/rs/zerolog"

	"github.com/tolga/wardroster/internal/calendar"
	"github.com/tolga/wardroster/internal/duty"
	"github.com/tolga/wardroster/internal/roster"
	"github.com/tolga/wardroster/internal/rostererr"
	"github.com/tolga/wardroster/internal/wallet"
)

// Options tunes the solver invocation (spec.md §4.4 "Solver driver").
type Options struct {
	MaxSeconds float64
	Seed       int64
	Workers    int
}

// Result is the Driver's output: the extracted duty grid plus solver
// diagnostics for the response envelope's solver_stats.
type Result struct {
	Schedule roster.Schedule
	Stats    roster.SolverStats
}

// Driver runs the Constraint Model Builder then the external MIP engine,
// following the teacher's service.SchedulerExecutor naming/err-wrapping
// idiom (a struct with a single Run method and zerolog breadcrumbs at
// model-build and solve boundaries), adapted from a recurring background
// executor to one blocking call.
type Driver struct {
	Log zerolog.Logger
}

// Run builds the model for req/demand/alloc and solves it, returning the
// duty grid on OPTIMAL/FEASIBLE or a *rostererr.SolverError when the solve
// fails or finds no solution. A failure to build the model or create the
// solver is returned as a *rostererr.InternalError.
func (d Driver) Run(req *roster.Request, demand *calendar.Demand, alloc *wallet.Result, opts Options) (*Result, error) {
	d.Log.Debug().Int("nurses", len(alloc.Nurses)).Int("days", demand.NumDays).Msg("building constraint model")

	model, err := Build(req, demand, alloc)
	if err != nil {
		return nil, &rostererr.InternalError{Cause: fmt.Errorf("model build: %w", err)}
	}

	solverEngine, err := mip.NewSolver(mip.Highs, model.M)
	if err != nil {
		return nil, &rostererr.InternalError{Cause: fmt.Errorf("solver init: %w", err)}
	}

	solveOptions := mip.NewSolveOptions()
	if opts.MaxSeconds > 0 {
		_ = solveOptions.SetMaximumDuration(time.Duration(opts.MaxSeconds * float64(time.Second)))
	}

	d.Log.Debug().Float64("max_seconds", opts.MaxSeconds).Msg("invoking solver")
	start := time.Now()
	solution, err := solverEngine.Solve(solveOptions)
	elapsed := time.Since(start)
	if err != nil {
		return nil, &rostererr.SolverError{
			Reason:     "invalid_model",
			NurseCount: len(alloc.Nurses),
		}
	}

	if !solution.IsOptimal() && !solution.IsSubOptimal() {
		return nil, diagnosticSolverError(alloc, demand, "infeasible")
	}

	schedule := extractSchedule(model, solution, alloc)

	return &Result{
		Schedule: schedule,
		Stats: roster.SolverStats{
			ObjectiveValue: solution.ObjectiveValue(),
			WallTime:       elapsed.Seconds(),
			Seed:           opts.Seed,
			Engine:         "mip/highs",
		},
	}, nil
}

// diagnosticSolverError builds the actionable SolverError spec.md §4.4
// requires: nurse count, representative daily wallet rows, and
// remediation suggestions.
func diagnosticSolverError(alloc *wallet.Result, demand *calendar.Demand, reason string) error {
	sample := make([]string, 0, 3)
	for day := 1; day <= demand.NumDays && len(sample) < 3; day++ {
		c := demand.Wallet[day]
		sample = append(sample, fmt.Sprintf("day %d: D=%d E=%d N=%d X=%d", day, c.D, c.E, c.N, c.X))
	}
	return &rostererr.SolverError{
		Reason:          reason,
		NurseCount:      len(alloc.Nurses),
		SampleDailyRows: sample,
		Suggestions: []string{
			"recheck daily wallet sums against nurse_count",
			"relax min_N or widen the all-existing nurse pool",
			"reduce the number of fixed preferences",
		},
	}
}

// extractSchedule reads the solved grid plus past_3days into the full
// spec.md §3 Roster shape, including the synthetic -3/-2/-1 slots.
func extractSchedule(model *Model, solution mip.Solution, alloc *wallet.Result) roster.Schedule {
	schedule := make(roster.Schedule, len(model.Order))
	for _, name := range model.Order {
		info := alloc.Nurses[name]
		days := make(map[int]duty.Duty, model.NumDays+3)
		days[-3] = info.Nurse.Past3Days[0]
		days[-2] = info.Nurse.Past3Days[1]
		days[-1] = info.Nurse.Past3Days[2]
		for day := 1; day <= model.NumDays; day++ {
			for _, dd := range duty.All {
				if solution.Value(model.X[name][day][dd]) >= 0.5 {
					days[day] = dd
					break
				}
			}
		}
		schedule[name] = days
	}
	return schedule
}
