// Package services implements the business logic layer of refracalc. It sits
// between the HTTP handlers and the estimation engine.
//
// # Available Services
//
//	- RefractometerService: estimation, batch estimation, calibration point
//	  management, import/export and last-used input
//	- HealthService: liveness, readiness and version information
//
// # Calibration Changes
//
// Every change to the calibration point collection follows the same path:
// the change is applied to a copy of the current points, the result is
// persisted, the engine rebuilds its calibration and a calibration:updated
// event is published. Changes are serialized; estimations are not blocked by
// them and always see a complete calibration.
//
// # Error Handling
//
// Services return errors that the transport layer maps to problem responses:
//
//	- refractometer.ErrUnknownModel for unknown model identifiers
//	- ErrInvalidPoint wrapping a refractometer.ValidationError
//	- errors.AppError of type NOT_FOUND for out-of-range point indices
//	- errors.AppError of type STORAGE or PARSING from the store and importers
package services
