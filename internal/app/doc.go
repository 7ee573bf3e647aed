// Package app wires the refracalc web service together: configuration,
// logging and OpenTelemetry, the calibration store, the refractometer and
// health services, the websocket hub and the chi router.
//
// # Initialization Flow
//
//	1. Initialize logging and OpenTelemetry from the loaded configuration
//	2. Open the store selected by storage.driver (memory, file or postgres)
//	3. Build the refractometer service from the stored calibration points
//	4. Register middleware and HTTP handlers, then create the server
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	application, err := app.NewApplication(ctx, cfg, nil)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// Run returns after SIGINT or SIGTERM once in-flight requests have finished,
// websocket clients are closed and the store is released. The package never
// calls os.Exit.
package app
