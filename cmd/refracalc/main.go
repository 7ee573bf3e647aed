package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"refracalc/pkg/contracts"
)

var (
	gEstimate    = "Estimation:"
	gCalibration = "Calibration:"
)

func main() {
	if err := NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewCommand builds the root command. Every invocation gets its own
// environment so tests can run commands side by side.
func NewCommand() *cobra.Command {
	env := &cliEnv{}

	cmd := &cobra.Command{
		Use:   "refracalc",
		Short: "refracalc estimates fermentation metrics from refractometer readings",
		Long: `refracalc corrects refractometer brix readings with a user calibration and
estimates original extract, final gravity, alcohol and attenuation with a
selectable correlation model.`,
		Version:      contracts.GetVersionString(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.load(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return env.close()
		},
	}

	cmd.AddGroup(
		&cobra.Group{ID: gEstimate, Title: gEstimate},
		&cobra.Group{ID: gCalibration, Title: gCalibration},
	)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&env.configPath, "config", "c", "", "config file (default: $REFRACALC_CONFIG or ./config.yaml)")
	flags.StringVarP(&env.logLevel, "log-level", "l", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&env.storage, "storage", "", "storage driver override (memory, file, postgres)")
	flags.StringVar(&env.dataDir, "data-dir", "", "data directory override for the file storage driver")

	cmd.AddCommand(
		NewEstimateCommand(env),
		NewModelsCommand(env),
		NewCalibrationCommand(env),
	)

	cmd.SetVersionTemplate(fmt.Sprintf("refracalc %s\n", contracts.GetVersionString()))
	return cmd
}
