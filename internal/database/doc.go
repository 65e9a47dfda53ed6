// Package database provides the data access layer for the portal.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── principals/      # Principal lookup, enrollment, listing
//	└── audit/           # Security audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./jobportal.db", logger)
//
//	principalsRepo := principals.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
//	p, err := principalsRepo.FindPrincipalByEmail(ctx, "user@example.com")
//
// # Interface Implementations
//
//   - principals.Repository: implements auth.PrincipalStore
//   - audit.Repository: backs audit.Service
//
// The sessions table used by scs lives in the same SQLite file but is owned
// by the session store, not by GORM migrations.
package database
