// Package db provides the embedded database schema and sample catalog.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// SampleCatalog is the YAML discount catalog served when no other source is
// configured.
//
//go:embed seed/discounts.yaml
var SampleCatalog []byte
