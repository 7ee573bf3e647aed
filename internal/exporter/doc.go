// Package exporter converts calibration sets and estimation reports to and
// from file formats users exchange with spreadsheets.
//
// Supported formats:
//
//   - json: the calibration point list used by the store, legacy {"x","y"}
//     points are accepted on import
//   - csv: UTF-8 with an optional BOM so spreadsheet tools detect the encoding
//   - xlsx: one sheet with Actual and Target columns, read and written with excelize
//
// Example usage:
//
//	exp := exporter.New(logger)
//	err := exp.ExportPoints(w, exporter.FormatXLSX, points)
//
//	points, err := exporter.ImportPoints(r, exporter.FormatCSV)
package exporter
