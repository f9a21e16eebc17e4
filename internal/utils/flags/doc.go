// Package flags provides helpers for binding toggle and choice flags to Cobra commands.
//
// Toggle flags accept optional yes/no values so that both "--dry-run" and
// "--dry-run no" parse, and choice usage strings render the supported values
// with the default highlighted.
package flags
