// Package http implements the HTTP handlers of the refracalc web service.
// Handlers stay thin: they decode and validate requests, call the
// refractometer service and render the result.
//
// # Routes
//
// All routes are mounted under /api:
//
//	GET    /models                      correlation models in selector order
//	POST   /estimate                    evaluate one input
//	POST   /estimate/batch              evaluate many inputs (?format=csv|xlsx for a report)
//	GET    /estimate/last               most recently submitted input
//	GET    /calibration                 active calibration and its points
//	PUT    /calibration                 replace every point
//	POST   /calibration/points          add a point
//	PUT    /calibration/points/{index}  replace a point
//	DELETE /calibration/points/{index}  remove a point
//	GET    /calibration/export          ?format=json|csv|xlsx
//	POST   /calibration/import          multipart "file" field or raw body
//	GET    /health, /health/live, /health/ready, /version
//
// # Error Handling
//
// Failures are written as RFC 7807 Problem Details by the shared
// errors.ErrorHandler:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Validation Failed",
//	    "status": 400,
//	    "detail": "target is required",
//	    "instance": "/api/calibration/points"
//	}
//
// Readings that cannot be parsed are not errors. An estimation always
// succeeds for a known model and reports the quantities it could not
// compute as null.
package http
