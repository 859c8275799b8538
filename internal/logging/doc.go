// Package logging builds the slog loggers used across mfasrt.
//
// Two formats are supported: a single-line console format with the component
// name in front of the message, and JSON with short ts/level/msg keys. Helpers
// attach the run ID and stage from a context, and WarnWithContext keeps
// warnings filterable by guaranteeing event_type, error_hint and impact fields.
package logging
