// Command seeduser creates or updates an admin user and the default
// contract statuses and types.
//
//	go run ./cmd/seeduser -username admin -password 'change-me'
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/config"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/infra"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var defaultStatuses = []struct {
	name, description, color string
}{
	{"Active", "Contract in force", "#28a745"},
	{"Under renewal", "Renewal or additive term in progress", "#ffc107"},
	{"Suspended", "Execution temporarily suspended", "#fd7e14"},
	{"Closed", "Contract ended or terminated", "#6c757d"},
}

var defaultTypes = []string{"Service", "Supply", "Lease", "Works"}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Administrator", "display name")
	email := flag.String("email", "admin@example.com", "e-mail address")
	flag.Parse()

	if len(*password) < 8 {
		log.Fatal().Msg("-password is required and must have at least 8 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	result := db.WithContext(ctx).Exec(`
		INSERT INTO users (id, username, name, email, password_hash, role, active, created_at, updated_at)
		VALUES (gen_random_uuid(), ?, ?, ?, ?, ?, true, now(), now())
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    role = EXCLUDED.role,
		    active = true,
		    updated_at = now()
	`, *username, *name, *email, string(hash), model.RoleAdmin)
	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert user")
	}

	for i, s := range defaultStatuses {
		err := db.WithContext(ctx).Exec(`
			INSERT INTO contract_statuses (id, name, description, active, color, sort_order, created_at, updated_at)
			VALUES (gen_random_uuid(), ?, ?, true, ?, ?, now(), now())
			ON CONFLICT (name) DO NOTHING
		`, s.name, s.description, s.color, i+1).Error
		if err != nil {
			log.Fatal().Err(err).Str("status", s.name).Msg("insert status")
		}
	}
	for _, t := range defaultTypes {
		err := db.WithContext(ctx).Exec(`
			INSERT INTO contract_types (id, name, active, created_at, updated_at)
			VALUES (gen_random_uuid(), ?, true, now(), now())
			ON CONFLICT (name) DO NOTHING
		`, t).Error
		if err != nil {
			log.Fatal().Err(err).Str("type", t).Msg("insert type")
		}
	}

	fmt.Printf("user %q created/updated; %d statuses and %d types ensured\n", *username, len(defaultStatuses), len(defaultTypes))
}
