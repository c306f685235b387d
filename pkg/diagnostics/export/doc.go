// Package export writes diagnostic records as JSON or CSV. The CLI uses it for
// `formgate diagnostics list --output json|csv` and the retention pruner uses the
// JSON exporter to archive records before deleting them.
package export
