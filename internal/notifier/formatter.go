package notifier

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"foreknown/internal/model"
	"foreknown/internal/predict"
	"foreknown/internal/recorder"
)

// User-facing messages for prediction failures.
const (
	MsgInvalidInput = "insufficient or invalid historical data"
	MsgOverflow     = "prediction failed due to extreme input values"
	MsgGeneric      = "prediction failed"
)

// UserMessage maps an error to the message shown to a user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, predict.ErrInvalidInput):
		return MsgInvalidInput
	case errors.Is(err, predict.ErrArithmeticOverflow):
		return MsgOverflow
	default:
		return MsgGeneric
	}
}

func riskEmoji(level model.RiskLevel) string {
	switch level {
	case model.RiskGreen:
		return "🟢"
	case model.RiskYellow:
		return "🟡"
	case model.RiskRed:
		return "🔴"
	default:
		return "⚪"
	}
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

// FormatForecastReport formats a forecast into a Telegram message.
func FormatForecastReport(f *model.Forecast) string {
	var b strings.Builder
	last := f.Calibration.LastValue
	final := f.FinalValue()

	b.WriteString(fmt.Sprintf("🔮 <b>Forecast %s</b> | %s\n\n", html.EscapeString(f.Symbol), f.GeneratedAt.Format("2006-01-02 15:04")))

	b.WriteString(fmt.Sprintf("Last value: %.2f (%d observations, %s)\n", last, len(f.History), html.EscapeString(f.Source)))
	if f.Summary.Count > 0 {
		b.WriteString(fmt.Sprintf("Range: %.2f – %.2f | SMA20: %.2f | RSI14: %.0f\n", f.Summary.Min, f.Summary.Max, f.Summary.SMA20, f.Summary.RSI14))
	}
	b.WriteString("\n📐 <b>Calibration:</b>\n")
	b.WriteString(fmt.Sprintf("  mean log-return: %+.5f\n", f.Calibration.MeanLogReturn))
	b.WriteString(fmt.Sprintf("  variance: %.6f\n", f.Calibration.Variance))
	b.WriteString(fmt.Sprintf("  drift: %.5f | volatility: %.5f\n", f.Calibration.Drift, f.Calibration.Volatility))

	b.WriteString(fmt.Sprintf("\n📈 <b>Projection</b> (%d steps × %.2f):\n", len(f.Predicted), f.StepSize))
	b.WriteString(fmt.Sprintf("  path end: %.2f (%+.1f%%)\n", final, pctChange(last, final)))
	if f.Ensemble != nil && len(f.Ensemble.Paths) > 1 {
		p := f.Ensemble.Final
		b.WriteString(fmt.Sprintf("  %d paths, P5 / P50 / P95: %.2f / %.2f / %.2f\n", len(f.Ensemble.Paths), p.P5, p.P50, p.P95))
		b.WriteString(fmt.Sprintf("  mean final: %.2f\n", f.Ensemble.FinalMean))
	}

	b.WriteString(fmt.Sprintf("\n%s <b>%s</b> (downside %.1f%%)\n", riskEmoji(f.Risk.Level), f.Risk.Label, f.Risk.Downside*100))
	return b.String()
}

// FormatRunSummary formats a recorded run for the /last command.
func FormatRunSummary(s *recorder.RunSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>Last forecast %s</b> | %s\n\n", html.EscapeString(s.Symbol), s.Timestamp.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Last value: %.2f → path end %.2f (%+.1f%%)\n", s.LastValue, s.FinalValue, pctChange(s.LastValue, s.FinalValue)))
	if s.Paths > 1 {
		b.WriteString(fmt.Sprintf("P5 / P50 / P95: %.2f / %.2f / %.2f (%d paths)\n", s.Final.P5, s.Final.P50, s.Final.P95, s.Paths))
	}
	b.WriteString(fmt.Sprintf("%s risk: %s\n", riskEmoji(s.Risk), s.Risk))
	b.WriteString(fmt.Sprintf("run: <code>%s</code>\n", s.RunID))
	return b.String()
}

// FormatFailure formats a failed forecast run.
func FormatFailure(symbol string, err error) string {
	return fmt.Sprintf("❌ <b>Forecast %s failed</b>: %s", html.EscapeString(symbol), UserMessage(err))
}
