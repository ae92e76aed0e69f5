// Package errors provides the classified error primitives used across articlebuilder.
//
// Every failure that aborts a build is a ClassifiedError carrying a category,
// a severity and a small context map (source path, output path, template name).
// The CLI adapter turns the category into a process exit code and logs the
// context through slog.
//
// Example usage:
//
//	err := errors.FileSystemError("write article").
//		WithCause(writeErr).
//		WithContext("path", outPath).
//		Build()
package errors
