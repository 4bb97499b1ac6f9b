// Package exporter writes query results as CSV, xlsx or JSON reports.
//
// Results are first flattened into Tables. CSVWriter writes each table to its
// own file, optionally with a UTF-8 BOM so spreadsheet applications detect the
// broker names correctly. WorkbookWriter writes all tables as worksheets of a
// single xlsx file. Exporter picks the format and names the files
// <product>_<date>_<report>.<ext> under the reports directory.
//
// Example usage:
//
//	exp := exporter.NewExporter(paths, cfg.Export, logger)
//	files, err := exp.Export(ctx, &exporter.Report{
//	    Product:     "SHFE.rb",
//	    Date:        date,
//	    Leaderboard: lb,
//	}, exporter.FormatXLSX)
package exporter
