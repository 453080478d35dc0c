// Command seeduser creates an operator account. Intended for bootstrapping
// the first admin on a fresh database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"backstock/internal/config"
	"backstock/internal/infra"
	"backstock/internal/model"
	"backstock/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("username", "", "login username")
	name := flag.String("name", "", "display name")
	password := flag.String("password", "", "plaintext password, hashed before storing")
	role := flag.String("role", "staff", "staff or admin")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seeduser -username <u> -password <p> [-name <n>] [-role staff|admin]")
		os.Exit(1)
	}
	if *role != "staff" && *role != "admin" {
		fmt.Fprintln(os.Stderr, "seeduser: role must be staff or admin")
		os.Exit(1)
	}
	if *name == "" {
		*name = *username
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "seeduser: config: %v\n", err)
		os.Exit(1)
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seeduser: database: %v\n", err)
		os.Exit(1)
	}
	if err := infra.RunMigrations(db); err != nil {
		fmt.Fprintf(os.Stderr, "seeduser: migrations: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seeduser: hash: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	user := model.User{
		Username:     *username,
		Name:         *name,
		PasswordHash: string(hash),
		Role:         *role,
		IsActive:     true,
	}
	if err := users.Create(ctx, &user); err != nil {
		fmt.Fprintf(os.Stderr, "seeduser: create: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("created %s user %q (%s)\n", user.Role, user.Username, user.ID)
}
