// Command adduser creates a user directly in the database, typically the
// first admin of a new installation.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/YouWantToPinch/hearth-api/internal/auth"
	"github.com/YouWantToPinch/hearth-api/internal/database"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	email := fs.String("email", "", "Email address")
	name := fs.String("name", "", "Display name (defaults to the username)")
	role := fs.String("role", database.RoleMember, "Role: member or admin")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	backend := fs.String("backend", envOrDefault("DATA_BACKEND", database.BackendSQLite), "Data backend: sqlite or postgres")
	dbPath := fs.String("db", envOrDefault("SQLITE_DB_PATH", "./data/hearth.db"), "Path to the SQLite database file")
	dbURL := fs.String("url", os.Getenv("DB_URL"), "PostgreSQL connection URL")
	driver := fs.String("driver", envOrDefault("DB_DRIVER", database.DriverPQ), "PostgreSQL driver: postgres or pgx")
	hashAlgorithm := fs.String("hash", envOrDefault("PASSWORD_HASH", auth.HashArgon2id), "Password hash: argon2id or bcrypt")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var missing []string
	if *username == "" {
		missing = append(missing, "user")
	}
	if *email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> -email <email> [-role admin] [-password <password>] [-db <db_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	if n := utf8.RuneCountInString(*username); n < 3 || n > 30 {
		return fmt.Errorf("username must be between 3 and 30 characters")
	}
	if *role != database.RoleMember && *role != database.RoleAdmin {
		return fmt.Errorf("invalid role %q: must be member or admin", *role)
	}
	if *name == "" {
		*name = *username
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if utf8.RuneCountInString(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	hasher, err := auth.NewHasher(auth.HasherConfig{Algorithm: *hashAlgorithm})
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := database.Open(ctx, database.Config{
		Backend:    *backend,
		Driver:     *driver,
		URL:        *dbURL,
		SQLitePath: *dbPath,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if _, err := store.GetUserByUsername(ctx, *username); err == nil {
		return fmt.Errorf("user %s already exists", *username)
	} else if !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := store.CreateUser(ctx, database.CreateUserParams{
		Name:         *name,
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		Role:         *role,
		IsActive:     true,
	})
	if errors.Is(err, database.ErrConflict) {
		return fmt.Errorf("a user with email %s already exists", *email)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s (%s) created successfully with ID %d\n", user.Username, user.Role, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
