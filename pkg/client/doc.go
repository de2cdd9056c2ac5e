// Package client provides HTTP implementations of the engine's submission and
// upload contracts, targeting the JSON endpoints exposed by the form backend.
package client
