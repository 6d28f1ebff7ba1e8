// seed provisions a user in the credential store, creating or updating it
// by username. Passwords are read from the environment, never from argv.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/bookingdesk/internal/domain"
	"github.com/yourorg/bookingdesk/internal/infrastructure/logger"
	"github.com/yourorg/bookingdesk/internal/repository"
	"github.com/yourorg/bookingdesk/pkg/config"
	"github.com/yourorg/bookingdesk/pkg/database"
)

func main() {
	username := flag.String("username", "", "username to create or update")
	role := flag.String("role", string(domain.RoleRequester), "role: requester or admin")
	disabled := flag.Bool("disabled", false, "mark the account disabled")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: seed -username <name> [-role requester|admin] [-disabled] (password via SEED_PASSWORD)")
		os.Exit(2)
	}
	if !domain.Role(*role).Valid() {
		fmt.Fprintf(os.Stderr, "seed: invalid role %q\n", *role)
		os.Exit(2)
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "seed: SEED_PASSWORD is not set")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewConnectionPool(ctx, &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}

	users := repository.NewPostgresUserRepository(pool.GetDB(), log)
	if err := users.UpsertUser(ctx, &domain.User{
		Username:     *username,
		PasswordHash: string(hash),
		Role:         domain.Role(*role),
		Disabled:     *disabled,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}

	fmt.Printf("user %s (%s) provisioned\n", *username, *role)
}
