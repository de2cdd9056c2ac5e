// Package model exposes the form definition types consumed by the flow
// engine: fields, options with branching metadata, and the partitioned
// FormDefinition. Concrete types live in internal/model; this package
// re-exports them for external callers.
package model
