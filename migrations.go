// Package primes holds assets shared by the application binaries.
package primes

import "embed"

// Migrations contains the goose SQL migrations under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS
