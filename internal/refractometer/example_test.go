package refractometer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Example_basicUsage estimates a finished beer from two refractometer readings
func Example_basicUsage() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	engine := NewEngine(nil, logger)
	result, err := engine.Estimate(ctx, EstimationInput{
		Model:            TerrillLinear,
		InitialBrix:      "20",
		FinalBrix:        "10",
		CorrectionFactor: "1.0",
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("OE %.2f °P, AE %.2f °P, FG %.4f\n", result.OE, result.AE, result.FG)
	fmt.Printf("ABV %.2f%%, ADF %.1f%%\n", result.ABV, result.ADF)
	// Output:
	// OE 20.00 °P, AE 4.53 °P, FG 1.0178
	// ABV 8.65%, ADF 77.3%
}

// Example_calibration corrects a refractometer that reads 5% low
func Example_calibration() {
	cal := NewCalibration([]CalibrationPoint{{Actual: 10.0, Target: 10.5}})

	fmt.Println(cal.Kind())
	fmt.Printf("%.2f\n", cal.Transform(20))
	// Output:
	// two-point
	// 21.00
}
