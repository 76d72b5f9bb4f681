// Package engine minimizes every output of a truth table, choosing the
// exact or heuristic minimizer per output.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pborges/qelm/internal/config"
	"github.com/pborges/qelm/internal/cube"
	"github.com/pborges/qelm/internal/espresso"
	"github.com/pborges/qelm/internal/logging"
	"github.com/pborges/qelm/internal/pla"
	"github.com/pborges/qelm/internal/qm"
	"github.com/pborges/qelm/internal/sop"
	"github.com/pborges/qelm/internal/verify"
)

// Recorder receives statistics about each minimized output.
// *metrics.Metrics implements it.
type Recorder interface {
	OutputMinimized(method string, d time.Duration, literals int)
	OutputFailed(method string)
	PrimesFound(n int)
	CoverSolved(solver string)
	HeuristicPasses(n int)
	VerifyFailed()
}

type nopRecorder struct{}

func (nopRecorder) OutputMinimized(string, time.Duration, int) {}
func (nopRecorder) OutputFailed(string)                        {}
func (nopRecorder) PrimesFound(int)                            {}
func (nopRecorder) CoverSolved(string)                         {}
func (nopRecorder) HeuristicPasses(int)                        {}
func (nopRecorder) VerifyFailed()                              {}

type Engine struct {
	cfg  config.Config
	log  *zap.SugaredLogger
	rec  Recorder
	seed int64
}

type Option func(*Engine)

func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = log }
}

func WithRecorder(rec Recorder) Option {
	return func(e *Engine) { e.rec = rec }
}

// WithSeed overrides the configured seed.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.seed = seed }
}

func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, rec: nopRecorder{}, seed: cfg.Seed}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Output is the minimized cover of one output.
type Output struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Method   string `json:"method"`
	Solver   string `json:"solver,omitempty"`
	Products int    `json:"products"`
	Literals int    `json:"literals"`
	SOP      string `json:"sop"`
	// Cubes holds the cover's patterns; Cover the cubes themselves.
	Cubes []string    `json:"cubes"`
	Cover []cube.Cube `json:"-"`
	// Primes is the prime implicant count of the exact minimizer.
	Primes int `json:"primes,omitempty"`
	// PassCosts is the literal count of every heuristic pass.
	PassCosts []int         `json:"passCosts,omitempty"`
	Verified  bool          `json:"verified"`
	Duration  time.Duration `json:"durationNanos"`
}

type Result struct {
	Inputs     int      `json:"inputs"`
	InputNames []string `json:"inputNames,omitempty"`
	// Seed is the base seed used by the heuristic; output i was run
	// with Seed+i.
	Seed    int64    `json:"seed"`
	Outputs []Output `json:"outputs"`
}

// Covers returns the covers of r in the form pla.Format takes.
func (r *Result) Covers() []pla.Cover {
	out := make([]pla.Cover, len(r.Outputs))
	for i, o := range r.Outputs {
		out[i] = pla.Cover{Name: o.Name, Cubes: o.Cover}
	}
	return out
}

// Run minimizes every output of p, up to cfg.Workers at a time.
func (e *Engine) Run(ctx context.Context, p *pla.PLA) (*Result, error) {
	log := e.log
	if log == nil {
		log = logging.FromContext(ctx)
	}
	fns, err := p.Functions()
	if err != nil {
		return nil, err
	}
	seed := e.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Debugw("minimizing", logging.LabelInputs, p.Inputs, "outputs", len(fns), "seed", seed)

	res := &Result{
		Inputs:     p.Inputs,
		InputNames: p.InputNames,
		Seed:       seed,
		Outputs:    make([]Output, len(fns)),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := e.Minimize(fn, rand.New(rand.NewSource(seed+int64(i))))
			if err != nil {
				return err
			}
			log.Infow("output minimized",
				logging.LabelOutput, out.Name,
				logging.LabelMethod, out.Method,
				logging.LabelCubes, out.Products,
				logging.LabelLiterals, out.Literals,
				logging.LabelDuration, out.Duration)
			res.Outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// Method returns the minimizer the engine uses for a function of n
// inputs.
func (e *Engine) Method(n int) string {
	if e.cfg.Method != config.MethodAuto {
		return e.cfg.Method
	}
	if n <= e.cfg.ExactThreshold {
		return config.MethodExact
	}
	return config.MethodHeuristic
}

// Minimize minimizes a single function. rng drives the heuristic.
func (e *Engine) Minimize(fn pla.Function, rng *rand.Rand) (Output, error) {
	start := time.Now()
	out := Output{Index: fn.Index, Name: fn.Name, Method: e.Method(fn.Inputs)}
	fail := func(err error) (Output, error) {
		e.rec.OutputFailed(out.Method)
		return out, fmt.Errorf("output %s: %w", fn.Name, err)
	}

	on, err := fn.OnCubes()
	if err != nil {
		return fail(err)
	}
	dc, err := fn.DCCubes()
	if err != nil {
		return fail(err)
	}

	switch out.Method {
	case config.MethodExact:
		cover, err := qm.ParseCoverStrategy(e.cfg.Cover)
		if err != nil {
			return fail(err)
		}
		r, err := qm.Minimize(on, dc, qm.Options{Cover: cover, PetrickLimit: e.cfg.PetrickLimit})
		if err != nil {
			return fail(err)
		}
		out.Cover = r.Cubes
		out.Primes = r.Primes
		out.Solver = string(r.Solver)
		e.rec.PrimesFound(r.Primes)
		if r.Solver != "" {
			e.rec.CoverSolved(out.Solver)
		}
	default:
		r := espresso.Run(on, dc, e.cfg.Passes, rng)
		out.Cover = r.Cubes
		out.PassCosts = r.Costs
		e.rec.HeuristicPasses(len(r.Costs))
	}

	if e.cfg.Verify {
		if err := verify.Check(fn.Inputs, fn.On, fn.DC, out.Cover); err != nil {
			e.rec.VerifyFailed()
			return fail(err)
		}
		out.Verified = true
	}

	out.Products = len(out.Cover)
	out.Literals = cube.Literals(out.Cover)
	out.Cubes = make([]string, len(out.Cover))
	for i, c := range out.Cover {
		out.Cubes[i] = c.Pattern()
	}
	out.SOP = sop.Render(out.Cover, fn.InputNames)
	out.Duration = time.Since(start)
	e.rec.OutputMinimized(out.Method, out.Duration, out.Literals)
	return out, nil
}
