// Package core defines the domain model for Aegis case correlation.
//
// # Architecture Overview
//
// The core package provides:
//   - Context value types (flows, processes, files, DNS/HTTP activity, ...)
//   - Indicator extraction and deduplication (IndicatorSet)
//   - The timeline-ordered context store backing case files
//   - Alert, CaseFile and the audit trail state machine
//   - Constants and enums for classification values
//
// # Design Principles
//
//  1. Interfaces defined where used (consumer package), not where implemented
//  2. Small, focused interfaces (1-3 methods ideal)
//  3. Accept interfaces, return concrete types
//  4. context.Context as first parameter for cancellation support
//  5. Typed errors with proper wrapping
//
// Context values are immutable once attached to a case file; the only
// mutation path for a case's audit trail is CaseFile.UpdateAudit.
package core
