// Package shared holds helpers used by several packages. Its testutil
// subpackage provides log capture and calibration fixtures for tests and
// must only be imported from _test.go files.
package shared
