package predict

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"foreknown/internal/model"
)

// Options configures an ensemble simulation.
type Options struct {
	Steps    int
	StepSize float64
	Paths    int
	Seed     int64 // 0 draws a seed from the wall clock
	Workers  int   // 0 uses GOMAXPROCS
}

func (o Options) withDefaults() Options {
	if o.Paths == 0 {
		o.Paths = 1
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Seed == 0 {
		o.Seed = NewEntropySource().Int63()
	}
	return o
}

// pathSource yields the generator for one ensemble path.
var pathSource = func(seed int64, stream uint64) NormalSource {
	return DeriveSource(seed, stream)
}

func (o Options) validate() error {
	if err := validateSteps(o.Steps); err != nil {
		return err
	}
	if o.Paths < 0 {
		return fmt.Errorf("%w: paths %d must not be negative", ErrInvalidInput, o.Paths)
	}
	return nil
}

// Simulate runs opts.Paths independent paths from the same calibration. Path i
// draws from DeriveSource(opts.Seed, i), so results depend only on the seed and
// never on the number of workers.
func Simulate(ctx context.Context, observations []float64, opts Options) (*model.Ensemble, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	cal, err := Calibrate(observations, opts.StepSize)
	if err != nil {
		return nil, err
	}
	return SimulateCalibrated(ctx, cal, opts)
}

// SimulateCalibrated is Simulate with the calibration already computed.
// opts.StepSize is ignored in favour of cal.StepSize.
func SimulateCalibrated(ctx context.Context, cal model.Calibration, opts Options) (*model.Ensemble, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	paths := make([][]float64, opts.Paths)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := 0; i < opts.Paths; i++ {
		i := i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("path %d panicked: %v", i, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := PredictCalibrated(cal, opts.Steps, pathSource(opts.Seed, uint64(i)))
			if err != nil {
				return fmt.Errorf("path %d: %w", i, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	finals := make([]float64, 0, len(paths))
	for _, p := range paths {
		if len(p) > 0 {
			finals = append(finals, p[len(p)-1])
		}
	}

	ens := &model.Ensemble{Paths: paths, Seed: opts.Seed}
	if len(finals) == 0 {
		return ens, nil
	}
	sort.Float64s(finals)
	ens.FinalMean = floats.Sum(finals) / float64(len(finals))
	ens.Final = model.Percentiles{
		P5:  stat.Quantile(0.05, stat.Empirical, finals, nil),
		P50: stat.Quantile(0.50, stat.Empirical, finals, nil),
		P95: stat.Quantile(0.95, stat.Empirical, finals, nil),
	}
	return ens, nil
}
