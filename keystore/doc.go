// Package keystore provides durable key/value storage for session
// credentials.
//
// # Design
//
// The [Store] interface is deliberately small: read a named string, write a
// named string, delete a set of names in one operation. The session layer
// relies on the multi-key Delete being a single operation so a logout never
// leaves a partial credential set behind for a concurrent reader.
//
// # What this package must NOT do
//
//   - Interpret values. Tokens and the serialized user profile are opaque
//     strings here.
//   - Import goSession or any sibling package.
package keystore
