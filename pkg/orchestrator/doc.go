// Package orchestrator wires the extraction → consolidation → rendering
// pipeline behind a single Generate call. It runs the extraction engine over
// the request sources, builds the rendering context from the consolidated
// proposals, renders the template in whichever format it arrives and returns
// the bytes together with the diagnostics payload from package status.
package orchestrator
