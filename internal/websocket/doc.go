// Package websocket pushes calibration change events to connected browser
// clients through a single broadcasting hub.
package websocket
