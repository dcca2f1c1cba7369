// Package ledger records which files have been uploaded, so an
// interrupted upload can resume without sending unchanged files again.
//
// # Implementations
//
//   - Memory: process-local, for tests and one-shot runs
//   - badger.Ledger: local resume state in a BadgerDB directory
//   - dynamo.Ledger: shared resume state in a DynamoDB table
package ledger
