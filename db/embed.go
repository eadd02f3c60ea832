// Package db provides the embedded catalog schema.
package db

import _ "embed"

// Schema contains the DDL for the product catalog table.
//
//go:embed migrations/001_schema.sql
var Schema string
