//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package dataset

import "errors"

// Error kinds. Every error returned by a pipeline stage wraps exactly one of
// these (FK violations wrap ErrValidation and ErrForeignKeyViolation), so
// callers can classify failures with errors.Is.
var (
	// ErrConfiguration reports invalid or missing generation parameters.
	ErrConfiguration = errors.New("configuration error")

	// ErrReferential reports an empty upstream set or an unresolved reference.
	ErrReferential = errors.New("referential error")

	// ErrIO reports an interchange file read or write failure.
	ErrIO = errors.New("io error")

	// ErrSchema reports a DDL failure while building the relational schema.
	ErrSchema = errors.New("schema error")

	// ErrValidation reports a failed load: row count mismatch, reconciliation
	// mismatch or constraint violation. The load has been rolled back.
	ErrValidation = errors.New("validation error")

	// ErrForeignKeyViolation is reported by store backends when an insert
	// references a row that does not exist.
	ErrForeignKeyViolation = errors.New("foreign key violation")
)
