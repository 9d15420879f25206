// Package core provides the business logic for bulk product imports.
//
// This package is the heart of the catalog importer, containing all domain
// logic independent of any transport. It is used by the web handlers, the
// catalogimport CLI and tests without modification.
//
// # Pipeline
//
// An import runs in two phases against a [Snapshot] of the catalog:
//
//  1. Validate: [Validator.ValidateAll] checks every row and the batch as a
//     whole. Nothing is written. Errors block the commit; warnings do not.
//  2. Commit: [Importer.Run] resolves each row to a create or an update by
//     SKU and writes it through a [ProductWriter]. Rows are independent, so a
//     failing row is recorded and the next one proceeds.
//
// [Service] wraps both phases with the row limit, the [ImportLimiter], the
// request timeout, logging and metrics.
//
// # Loose input
//
// Rows come from spreadsheets, so price and hidePrice may be strings, numbers
// or booleans. [Scalar] keeps the JSON kind, and [ParsePrice],
// [ParseHidePrice], [NormalizeStockStatus], [SplitFeatures] and [SplitImages]
// are the only places input is coerced. [BuildPayload] applies them to
// produce a [ProductPayload].
//
// # Storage
//
// [Store] is implemented by [PostgresStore] (pgx, one transaction per
// product) and [MemoryStore]. Neither is shared global state; the store is
// passed to [NewService] and [NewImporter] explicitly.
//
// # Error Handling
//
// Batch-level failures are mapped to user-friendly messages using [MapError].
// Each category has a code for support reference:
//
//   - IMP001-IMP003: Import errors (busy, too many rows, interrupted)
//   - REQ001-REQ005: Request errors (malformed body, cancelled, timeout)
//   - FILE001-FILE005: CSV upload errors
//   - DB001-DB008: Database errors
package core
