package main

import (
	"bufio"   // Piped password input
	"context" // Store calls
	"errors"  // Error inspection
	"flag"    // Command line flags
	"fmt"     // Output
	"io"      // Injected streams
	"os"      // Process streams
	"strings" // Input trimming

	"budget_ledger/internal/config"  // Database settings
	"budget_ledger/internal/db"      // Database connection
	"budget_ledger/internal/domain"  // Validation errors
	"budget_ledger/internal/service" // Registration rules
	"budget_ledger/internal/store"   // User Store
	"budget_ledger/internal/utils"   // Password Hasher

	"golang.org/x/term" // Hidden password prompt
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run registers one user with the same rules as the HTTP registration
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg := config.LoadConfig() // Flags fall back to the environment

	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Login email")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	driver := fs.String("driver", cfg.DBDriver, "Database driver: mysql or sqlite")
	dsn := fs.String("dsn", cfg.DSN(), "Database DSN or SQLite file path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var missing []string
	if *name == "" {
		missing = append(missing, "name")
	}
	if *email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		fmt.Fprintln(stdout, "Usage: adduser -name <name> -email <email> [-password <password>] [-driver <driver>] [-dsn <dsn>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Newline after hidden input
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password cannot be empty")
	}

	conn, err := db.Open(*driver, *dsn, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if sqlDB, err := conn.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.AutoMigrate(conn); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	auth, err := service.NewAuthService(service.AuthConfig{
		Users:  store.NewUserStore(conn),
		Hasher: utils.NewHasher(cfg.BcryptCost),
	})
	if err != nil {
		return err
	}
	user, err := auth.Register(context.Background(), *name, *email, password)
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("invalid %s: %s", verr.Field, verr.Message)
	} else if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	role := "user"
	if user.Admin {
		role = "admin"
	}
	fmt.Fprintf(stdout, "User %s created successfully with ID %d (%s)\n", user.Name, user.ID, role)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Hide input on a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
