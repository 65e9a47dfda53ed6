// Command seed_demo creates a demo database with one admin, a few employers and a batch of students.
// Usage: go run ./cmd/seed_demo [-db path/to/demo.db] [-students 30]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/jobportal/internal/auth"
	"github.com/mrlokans/jobportal/internal/database"
	"github.com/mrlokans/jobportal/internal/database/principals"
	"github.com/mrlokans/jobportal/internal/entities"
	"github.com/mrlokans/jobportal/internal/logging"
	"github.com/mrlokans/jobportal/internal/notify"
)

const (
	defaultDemoDatabasePath = "./demo/demo.db"

	// DemoPassword is shared by every seeded account.
	DemoPassword = "DemoPass1"
)

type demoPrincipal struct {
	Username string
	FullName string
	Role     entities.Role
}

func demoPrincipals(students int) []demoPrincipal {
	people := []demoPrincipal{
		{Username: "admin", FullName: "Portal Admin", Role: entities.RoleAdmin},
		{Username: "acme_hr", FullName: "Acme Recruiting", Role: entities.RoleEmployer},
		{Username: "globex_hr", FullName: "Globex Talent", Role: entities.RoleEmployer},
	}
	for i := 1; i <= students; i++ {
		people = append(people, demoPrincipal{
			Username: fmt.Sprintf("student_%02d", i),
			FullName: fmt.Sprintf("Demo Student %d", i),
			Role:     entities.RoleStudent,
		})
	}
	return people
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	students := flag.Int("students", 30, "number of student accounts to create")
	flag.Parse()

	logger := logging.Setup("seed_demo", "", "text", "info", nil)
	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	// Minimum cost keeps seeding fast; these accounts are not real.
	service := auth.NewService(
		principals.NewRepository(db.DB),
		notify.NewLogNotifier(logger),
		auth.NewHasher(bcrypt.MinCost),
		auth.DefaultPasswordPolicy(),
		logger,
	)

	ctx := context.Background()
	created := 0
	for i, p := range demoPrincipals(*students) {
		req := auth.RegistrationRequest{
			Username:        p.Username,
			Password:        DemoPassword,
			ConfirmPassword: DemoPassword,
			Email:           p.Username + "@demo.jobportal.local",
			FullName:        p.FullName,
			Phone:           fmt.Sprintf("555000%04d", i),
			Address:         fmt.Sprintf("%d Demo Street", i+1),
		}
		if _, err := service.CreatePrincipal(ctx, req, p.Role); err != nil {
			log.Printf("Failed to create %s %s: %v", p.Role, p.Username, err)
			continue
		}
		created++
	}

	log.Printf("Demo database generated successfully! %d principals, password %q", created, DemoPassword)
}
