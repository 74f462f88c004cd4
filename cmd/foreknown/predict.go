package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"foreknown/internal/collector"
	"foreknown/internal/model"
	"foreknown/internal/notifier"
	"foreknown/internal/predict"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Forecast one series and print the predicted path",
	Example: `  foreknown predict --csv data/history.csv --steps 20 --seed 7
  foreknown predict --values 58.7,56.85,57,59.6,60 --horizon 10 --step-size 0.5
  foreknown predict --symbol SPX500 --paths 1000 --out forecast.csv`,
	RunE: runPredict,
}

func init() {
	f := predictCmd.Flags()
	f.Float64Slice("values", nil, "comma separated observations")
	f.String("csv", "", "read observations from a CSV file")
	f.String("symbol", "", "fetch observations for a symbol from the configured data source")
	f.Int("steps", 0, "number of steps to extrapolate")
	f.Float64("horizon", 0, "extrapolation horizon, used when --steps is not set")
	f.Float64("step-size", 0, "time increment per step")
	f.Int64("seed", 0, "random seed, 0 draws one from the clock")
	f.Int("paths", 0, "number of simulated paths")
	f.Int("show", 10, "number of predicted steps to print, 0 prints all")
	f.String("out", "", "write history and predicted path to this CSV file")
}

// pathRow is one line of the CSV export.
type pathRow struct {
	Step  int     `csv:"step"`
	Kind  string  `csv:"kind"`
	Value float64 `csv:"value"`
}

func runPredict(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	values, _ := flags.GetFloat64Slice("values")
	csvPath, _ := flags.GetString("csv")
	symbol, _ := flags.GetString("symbol")
	horizon, _ := flags.GetFloat64("horizon")
	show, _ := flags.GetInt("show")
	out, _ := flags.GetString("out")

	opts := predict.Options{}
	opts.Steps, _ = flags.GetInt("steps")
	opts.StepSize, _ = flags.GetFloat64("step-size")
	opts.Seed, _ = flags.GetInt64("seed")
	opts.Paths, _ = flags.GetInt("paths")

	ctx := cmd.Context()
	series := &model.Series{Observations: values, Source: "flags"}
	if len(values) == 0 {
		fetcher := newFetcher(cfg)
		if csvPath != "" {
			fetcher = collector.NewCSVFetcher(csvPath)
		}
		if symbol == "" {
			symbol = cfg.DataSource.Symbol
		}
		col := collector.NewCollector(fetcher, symbol, cfg.DataSource.Lookback)
		series, err = col.Collect(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", notifier.UserMessage(err), err)
		}
	}

	fc := newForecaster(cfg)
	if opts.Steps == 0 && horizon != 0 {
		stepSize := opts.StepSize
		if stepSize == 0 {
			stepSize = fc.Options.StepSize
		}
		if opts.Steps, err = predict.StepsForHorizon(horizon, stepSize); err != nil {
			return err
		}
	}
	if opts.Paths == 0 {
		opts.Paths = fc.Options.Paths
	}
	if opts.Seed == 0 {
		opts.Seed = fc.Options.Seed
	}

	forecast, err := fc.RunWith(ctx, series.Observations, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", notifier.UserMessage(err), err)
	}
	forecast.Symbol = series.Symbol
	forecast.Source = series.Source

	w := cmd.OutOrStdout()
	renderCalibration(w, forecast)
	renderPath(w, forecast, show)

	if out != "" {
		if err := exportPath(out, forecast); err != nil {
			return err
		}
		log.WithField("file", out).Info("forecast exported")
	}
	return nil
}

func renderCalibration(w io.Writer, f *model.Forecast) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	cal := f.Calibration
	rows := [][]string{
		{"symbol", f.Symbol},
		{"source", f.Source},
		{"observations", strconv.Itoa(len(f.History))},
		{"mean log-return", formatFloat(cal.MeanLogReturn)},
		{"variance", formatFloat(cal.Variance)},
		{"drift", formatFloat(cal.Drift)},
		{"volatility", formatFloat(cal.Volatility)},
		{"last value", formatFloat(cal.LastValue)},
		{"steps", strconv.Itoa(f.Steps)},
		{"step size", formatFloat(f.StepSize)},
		{"seed", strconv.FormatInt(f.Seed, 10)},
	}
	if f.Ensemble != nil && len(f.Ensemble.Paths) > 1 {
		rows = append(rows,
			[]string{"paths", strconv.Itoa(len(f.Ensemble.Paths))},
			[]string{"final p5", formatFloat(f.Ensemble.Final.P5)},
			[]string{"final p50", formatFloat(f.Ensemble.Final.P50)},
			[]string{"final p95", formatFloat(f.Ensemble.Final.P95)},
		)
	}
	rows = append(rows, []string{"risk", fmt.Sprintf("%s (%s)", f.Risk.Level, f.Risk.Label)})
	table.AppendBulk(rows)
	table.Render()
}

func renderPath(w io.Writer, f *model.Forecast, show int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Step", "Value"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	start := 0
	if show > 0 && len(f.Predicted) > show {
		start = len(f.Predicted) - show
	}
	for i := start; i < len(f.Predicted); i++ {
		table.Append([]string{strconv.Itoa(i + 1), formatFloat(f.Predicted[i])})
	}
	table.Render()
}

// exportPath writes the history (steps <= 0) followed by the predicted path.
func exportPath(path string, f *model.Forecast) error {
	rows := make([]*pathRow, 0, len(f.History)+len(f.Predicted))
	for i, v := range f.History {
		rows = append(rows, &pathRow{Step: i - len(f.History) + 1, Kind: "history", Value: v})
	}
	for i, v := range f.Predicted {
		rows = append(rows, &pathRow{Step: i + 1, Kind: "predicted", Value: v})
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()
	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}
