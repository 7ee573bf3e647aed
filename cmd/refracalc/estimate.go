package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"refracalc/internal/refractometer"
	"refracalc/internal/services"
)

func NewEstimateCommand(env *cliEnv) *cobra.Command {
	var (
		model, initial, final, wcf string
		useLast, asJSON            bool
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate fermentation metrics from brix readings",
		Long: `Estimate original extract, final gravity, alcohol and attenuation from an
initial and a final refractometer reading. Both readings are corrected with
the stored calibration first.

Readings that are missing or unusable are not errors: the result then only
contains what could be computed.`,
		Example: `  refracalc estimate --initial 20 --final 10
  refracalc estimate -m novotrill -i 18.2 -f 8.1 --wcf 1.02
  refracalc estimate --last --final 7.9`,
		GroupID: gEstimate,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := env.open(ctx)
			if err != nil {
				return err
			}

			if useLast {
				last, ok, err := svc.LastInput(ctx)
				if err != nil {
					return fmt.Errorf("failed to load last input: %w", err)
				}
				if ok {
					prev := services.ToInputRequest(last.Input)
					flags := cmd.Flags()
					if !flags.Changed("model") {
						model = prev.Model
					}
					if !flags.Changed("initial") {
						initial = prev.InitialBrix
					}
					if !flags.Changed("final") {
						final = prev.FinalBrix
					}
					if !flags.Changed("wcf") {
						wcf = prev.CorrectionFactor
					}
				}
			}

			in, err := svc.NewInput(model, initial, final, wcf)
			if err != nil {
				return err
			}
			est, err := svc.Estimate(ctx, in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(services.ToEstimateResponse(est))
			}
			return printEstimation(out, est)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&model, "model", "m", "", "correlation model name or index (default from config)")
	flags.StringVarP(&initial, "initial", "i", "", "initial brix reading")
	flags.StringVarP(&final, "final", "f", "", "final brix reading")
	flags.StringVarP(&wcf, "wcf", "w", "", "wort correction factor (default from config)")
	flags.BoolVar(&useLast, "last", false, "start from the last submitted input; explicit flags override it")
	flags.BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printEstimation(w io.Writer, est services.Estimation) error {
	r := est.Result
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Model:\t%s\n", r.Model)
	fmt.Fprintf(tw, "Stage:\t%s\n", stageString(r.Stage))
	fmt.Fprintf(tw, "Calibration:\t%s\n", est.Calibration.Kind())
	fmt.Fprintln(tw, "\t")

	rows := []struct {
		label string
		value string
	}{
		{"Original extract", withSG(r.OE, r.OESG())},
		{"Apparent extract", value(r.AE, 2, "°P")},
		{"Final gravity", value(r.FG, 4, "")},
		{"Real extract", withSG(r.RE, r.RESG())},
		{"Alcohol by weight", value(r.ABW, 2, "%")},
		{"Alcohol by volume", value(r.ABV, 2, "%")},
		{"Apparent attenuation", value(r.ADF, 1, "%")},
		{"Real attenuation", value(r.RDF, 1, "%")},
		{"Energy", energy(r.Kcal, r.KJ)},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", row.label, row.value)
	}
	return tw.Flush()
}

func stageString(s refractometer.Stage) string {
	switch s {
	case refractometer.StageFull:
		return color.GreenString(s.String())
	case refractometer.StagePreview:
		return color.YellowString(s.String())
	default:
		return color.RedString(s.String())
	}
}

// value formats v with the given decimals, or a dash when it is unavailable
func value(v float64, decimals int, unit string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if unit != "" {
		s += " " + unit
	}
	return s
}

func withSG(plato, sg float64) string {
	if math.IsNaN(plato) {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", value(plato, 2, "°P"), value(sg, 4, "SG"))
}

func energy(kcal, kj float64) string {
	if math.IsNaN(kcal) {
		return "-"
	}
	return fmt.Sprintf("%s / %s", value(kcal, 0, "kcal"), value(kj, 0, "kJ per 100 mL"))
}
