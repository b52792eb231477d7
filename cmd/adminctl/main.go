// adminctl bootstraps dashboard admin accounts from the command line.
// The first superadmin has to come from somewhere before the API can be
// used to manage the rest.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/dkravets/adminboard/internal/server/auth"
	"github.com/dkravets/adminboard/internal/server/config"
	"github.com/dkravets/adminboard/internal/server/models"
	"github.com/dkravets/adminboard/internal/server/repositories/repomanager"
)

func main() {
	var (
		dsn   = flag.String("d", "", "database DSN (defaults to server config)")
		email = flag.String("e", "", "admin email")
		role  = flag.String("r", string(models.RoleSuperAdmin), "role: admin or superadmin")
	)
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}
	if !models.Role(*role).Valid() {
		log.Fatalf("unknown role %q", *role)
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	if *dsn != "" {
		cfg.DatabaseDSN = *dsn
	}

	password, err := promptPassword()
	if err != nil {
		log.Fatal(err)
	}

	hash, err := auth.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatal(err)
	}

	admin, err := rm.Admins(db).Create(ctx, &models.Admin{
		Email:        *email,
		PasswordHash: hash,
		Role:         models.Role(*role),
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("created %s (%s) id=%s\n", admin.Email, admin.Role, admin.ID)
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	fmt.Fprint(os.Stderr, "Repeat: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("empty password")
	}
	return string(first), nil
}
