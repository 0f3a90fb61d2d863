// Package model defines the data structures shared by every pagescore package.
//
// This package contains the following main types:
//   - PageRecord: a content page as exported from the content store
//   - Metrics: the flat signal set extracted from one rendered page
//   - Issue and ViolationTally: evaluator output
//   - Report: the compiled, dashboard-ready result of one analysis run
//
// Models live in their own package so that extract, audit, pipeline, report
// and database can share them without import cycles. All types serialize to
// JSON for report output and database storage.
package model
