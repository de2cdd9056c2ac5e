// Package definition loads form definitions from external sources: JSON/YAML
// documents authored in a CMS backend, and OpenAPI operations whose request
// schemas are derived into a field set. Labels and notes pass through a strict
// sanitiser since definition documents arrive from a remote backend.
package definition
