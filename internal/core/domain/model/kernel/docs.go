// Package kernel provides shared value objects used across the domain model.
//
// The package includes:
//   - UUID: A validated identifier for entities and aggregates
//   - Money: An immutable monetary amount in integer minor units with a currency code
//
// All value objects are immutable, validate themselves on construction, and
// expose Validate methods so that objects reconstructed from persistence or
// external input can be checked before use.
package kernel
