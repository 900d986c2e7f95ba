// Package core provides the business logic of the data dashboard.
//
// This package contains all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Table: an ordered set of typed columns. Missing cells are pgtype values
//     with Valid=false; category columns use code -1.
//   - Ingestion: [Load] turns uploaded bytes into a Table, trying each
//     candidate [Encoding] in order for CSV files.
//   - Coercion: [ApplyDirectives] converts columns to the types the user chose.
//   - Analysis: [Describe] summarizes numeric columns and [PrepareChart]
//     computes the data behind each chart kind.
//   - Service: sessions, the concurrency limiter and the session janitor.
//
// # Encoding Fallback
//
// CSV bytes are decoded strictly with each candidate encoding. The first
// encoding that decodes without error is used. A decode failure moves on to
// the next candidate; a CSV parse error stops the fallback, since another
// encoding would not fix the file's structure. Every attempt is recorded in
// [LoadResult.Attempts] so the page can show what happened.
//
// # Informational Conditions
//
// Conditions such as "no numerical columns" are returned as [*InfoError].
// Handlers show their message as information instead of an error.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (size, format, encoding, parsing)
//   - TYPE001-TYPE002: Column type conversion errors
//   - CHART001: Chart unavailable
//   - SES001: Session expired
//   - RATE001: Rate limited or server busy
package core
