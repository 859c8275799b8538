// Package deps resolves the external binaries and model files the aligner
// pipeline needs and reports which of them are missing.
package deps
