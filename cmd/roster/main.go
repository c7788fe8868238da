// Command roster is the CLI Driver / Process Boundary for the nurse duty
// roster builder: it reads one request (stdin or -file), runs the
// Calendar, Wallet Allocator, Input Validator, Constraint Model Builder &
// Solver Driver, and Result Validator in sequence, and writes the JSON
// response to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tolga/wardroster/internal/calendar"
	"github.com/tolga/wardroster/internal/config"
	"github.com/tolga/wardroster/internal/result"
	"github.com/tolga/wardroster/internal/roster"
	"github.com/tolga/wardroster/internal/rostererr"
	"github.com/tolga/wardroster/internal/solver"
	"github.com/tolga/wardroster/internal/validate"
	"github.com/tolga/wardroster/internal/wallet"
)

// gracePeriod covers result-validation bookkeeping after the solver
// returns, on top of the requested wall-time budget (spec.md §5).
const gracePeriod = 5 * time.Second

func main() {
	filePath := flag.String("file", "", "path to the request JSON; reads stdin if empty")
	logLevel := flag.String("log-level", "", "overrides ROSTER_LOG_LEVEL")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	cfg := config.Load()
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	requestID := uuid.New()
	logger := log.With().Str("request_id", requestID.String()).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req, err := readRequest(*filePath)
	if err != nil {
		emit(os.Stdout, envelope(statusFor(err), err, requestID))
		os.Exit(1)
	}

	resp, err := run(ctx, req, cfg, logger, requestID)
	if err != nil {
		logger.Error().Err(err).Msg("roster build failed")
		emit(os.Stdout, envelope(statusFor(err), err, requestID))
		os.Exit(1)
	}

	if err := json.NewEncoder(os.Stdout).Encode(resp); err != nil {
		logger.Fatal().Err(err).Msg("failed to encode response")
	}
}

func readRequest(filePath string) (*roster.Request, error) {
	var data []byte
	var err error
	if filePath != "" {
		data, err = os.ReadFile(filePath)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return nil, &rostererr.InternalError{Cause: err}
	}

	var req roster.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &rostererr.ValidationError{Problems: []string{err.Error()}}
	}
	return &req, nil
}

// run executes the five components in sequence (spec.md §5: strictly
// sequential, no partial output on any failure).
func run(ctx context.Context, req *roster.Request, cfg *config.Config, logger zerolog.Logger, requestID uuid.UUID) (*roster.Response, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	deadline := time.Duration(cfg.MaxSolveSeconds)*time.Second + gracePeriod
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	region := cfg.HolidayState
	if req.Region != "" {
		region = req.Region
	}

	logger.Debug().Int("year", req.Year).Int("month", req.Month).Str("region", string(region)).Msg("building calendar demand")
	demand, err := calendar.Build(req.Year, req.Month, calendar.Config{
		Templates: req.DailyWalletConfig,
		Region:    region,
	})
	if err != nil {
		return nil, err
	}

	if err := validate.LowGradeFeasible(req, req.DailyWalletConfig); err != nil {
		return nil, err
	}

	logger.Debug().Int("nurses", len(req.Nurses)).Msg("allocating wallets")
	alloc, err := wallet.Allocate(req, demand)
	if err != nil {
		return nil, err
	}

	if err := validate.Request(req, demand); err != nil {
		return nil, err
	}

	driver := solver.Driver{Log: logger}
	opts := solver.Options{MaxSeconds: cfg.MaxSolveSeconds, Seed: seed, Workers: cfg.SolverWorkers}
	solved, err := runSolver(ctx, driver, req, demand, alloc, opts)
	if err != nil {
		return nil, err
	}

	logger.Debug().Msg("validating result")
	report := result.Validate(solved.Schedule, demand, alloc)

	return buildResponse(solved, alloc, report), nil
}

func runSolver(ctx context.Context, driver solver.Driver, req *roster.Request, demand *calendar.Demand, alloc *wallet.Result, opts solver.Options) (*solver.Result, error) {
	type outcome struct {
		res *solver.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := driver.Run(req, demand, alloc, opts)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return nil, &rostererr.SolverError{Reason: "timeout", NurseCount: len(alloc.Nurses)}
	case o := <-done:
		return o.res, o.err
	}
}

func buildResponse(solved *solver.Result, alloc *wallet.Result, report roster.ValidationReport) *roster.Response {
	wallets := make(map[string]roster.NurseWalletWire, len(alloc.Wallets))
	for name, w := range alloc.Wallets {
		wallets[name] = roster.NurseWalletWire{N: w.TargetN, X: w.TargetX}
	}
	return &roster.Response{
		Status:       "success",
		Schedule:     solved.Schedule,
		NurseWallets: wallets,
		Validation:   report,
		SolverStats:  solved.Stats,
	}
}

// statusFor maps an error to the §6 error envelope's status field.
func statusFor(err error) string {
	switch err.(type) {
	case *rostererr.ValidationError, *rostererr.ConfigError, *rostererr.MinNTooLow, *rostererr.MinNTooHigh, *rostererr.LowGradeOverflow:
		return "validation_error"
	case *rostererr.SolverError:
		return "solver_error"
	default:
		return "error"
	}
}

type errorBody struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Traceback string `json:"traceback,omitempty"`
	RequestID string `json:"request_id"`
}

func envelope(status string, err error, requestID uuid.UUID) errorBody {
	var internal *rostererr.InternalError
	if status == "error" && !asInternal(err, &internal) {
		err = &rostererr.InternalError{Cause: err}
	}
	body := errorBody{Status: status, Message: err.Error(), RequestID: requestID.String()}
	if asInternal(err, &internal) {
		body.Traceback = string(debug.Stack())
	}
	return body
}

func asInternal(err error, target **rostererr.InternalError) bool {
	ie, ok := err.(*rostererr.InternalError)
	if ok {
		*target = ie
	}
	return ok
}

func emit(w io.Writer, body errorBody) {
	_ = json.NewEncoder(w).Encode(body)
}
