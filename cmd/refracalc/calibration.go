package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"refracalc/internal/exporter"
	"refracalc/internal/refractometer"
)

func NewCalibrationCommand(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calibration",
		Aliases: []string{"cal"},
		Short:   "Manage refractometer calibration points",
		Long: `Manage the points that map raw refractometer readings to their true values.
Without points readings are used as they are; one point gives a straight line
through the origin; more points give a polynomial of up to third degree.`,
		GroupID: gCalibration,
	}

	// show
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the active calibration and its points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			return printCalibration(cmd.OutOrStdout(), svc.Calibration())
		},
	}

	// add
	addCmd := &cobra.Command{
		Use:     "add <actual> <target>",
		Short:   "Add a point: the reading shown and the value it should be",
		Example: "  refracalc calibration add 10.0 10.4",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePoint(args[0], args[1])
			if err != nil {
				return err
			}
			svc, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			cal, err := svc.AddPoint(cmd.Context(), p)
			if err != nil {
				return fmt.Errorf("failed to add point: %w", err)
			}
			return printCalibration(cmd.OutOrStdout(), cal)
		},
	}

	// remove
	removeCmd := &cobra.Command{
		Use:     "remove <index>",
		Aliases: []string{"rm"},
		Short:   "Remove the point at index",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIntArg(args, "index")
			if err != nil {
				return err
			}
			svc, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			cal, err := svc.DeletePoint(cmd.Context(), index)
			if err != nil {
				return fmt.Errorf("failed to remove point: %w", err)
			}
			return printCalibration(cmd.OutOrStdout(), cal)
		},
	}

	// import
	var importFormat string
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace every point with those read from a JSON, CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatFor(importFormat, args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			cal, err := svc.ImportPoints(cmd.Context(), f, format)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", args[0], err)
			}
			return printCalibration(cmd.OutOrStdout(), cal)
		},
	}
	importCmd.Flags().StringVar(&importFormat, "format", "", "file format (json, csv, xlsx); default from the extension")

	// export
	var exportFormat, output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the points as JSON, CSV or XLSX",
		Example: `  refracalc calibration export --format csv
  refracalc calibration export -o points.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := formatFor(exportFormat, output)
			if err != nil {
				return err
			}
			svc, err := env.open(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return svc.ExportPoints(cmd.Context(), w, format)
		},
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format (json, csv, xlsx); default from --output or json")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	cmd.AddCommand(showCmd, addCmd, removeCmd, importCmd, exportCmd)
	return cmd
}

func printCalibration(w io.Writer, cal *refractometer.Calibration) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Kind:\t%s\n", cal.Kind())
	fmt.Fprintf(tw, "Degree:\t%d\n", cal.Degree())

	coeffs := make([]string, 0, len(cal.Coefficients()))
	for _, c := range cal.Coefficients() {
		coeffs = append(coeffs, strconv.FormatFloat(c, 'g', 6, 64))
	}
	if len(coeffs) > 0 {
		fmt.Fprintf(tw, "Coefficients:\t%s\n", strings.Join(coeffs, ", "))
	}

	points := cal.Points()
	if len(points) == 0 {
		fmt.Fprintln(tw, "Points:\tnone")
		return tw.Flush()
	}
	fmt.Fprintln(tw, "\t")
	fmt.Fprintln(tw, "INDEX\tACTUAL\tTARGET")
	for i, p := range points {
		fmt.Fprintf(tw, "%d\t%g\t%g\n", i, p.Actual, p.Target)
	}
	return tw.Flush()
}

// formatFor picks the explicit format, else the file extension, else JSON
func formatFor(explicit, filename string) (exporter.Format, error) {
	if explicit != "" {
		return exporter.ParseFormat(explicit)
	}
	if ext := filepath.Ext(filename); ext != "" {
		return exporter.ParseFormat(ext)
	}
	return exporter.FormatJSON, nil
}

func parsePoint(actual, target string) (refractometer.CalibrationPoint, error) {
	a, err := strconv.ParseFloat(strings.TrimSpace(actual), 64)
	if err != nil {
		return refractometer.CalibrationPoint{}, fmt.Errorf("invalid actual reading: %v", err)
	}
	t, err := strconv.ParseFloat(strings.TrimSpace(target), 64)
	if err != nil {
		return refractometer.CalibrationPoint{}, fmt.Errorf("invalid target value: %v", err)
	}
	return refractometer.CalibrationPoint{Actual: a, Target: t}, nil
}

func parseIntArg(args []string, valueName string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("invalid number of arguments")
	}
	value, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", valueName, err)
	}
	return value, nil
}
