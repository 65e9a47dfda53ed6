package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mrlokans/jobportal/internal/apperrors"
	"github.com/mrlokans/jobportal/internal/auth"
	"github.com/mrlokans/jobportal/internal/config"
	"github.com/mrlokans/jobportal/internal/database"
	"github.com/mrlokans/jobportal/internal/database/principals"
	"github.com/mrlokans/jobportal/internal/entities"
	"github.com/mrlokans/jobportal/internal/logging"
	"github.com/mrlokans/jobportal/internal/notify"
)

// PasswordEnvVar lets scripts pass the password without putting it on the command line.
const PasswordEnvVar = "JOBPORTAL_PASSWORD"

// CreateUserCommand enrolls a principal with an explicit role, typically the first admin.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	FullName     string
	Phone        string
	Address      string
	Role         string
	DatabasePath string
	BcryptCost   int
	Verbose      bool

	out io.Writer
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{out: os.Stdout}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username, 3-20 letters, digits or underscores (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address used to log in (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password (defaults to $"+PasswordEnvVar+")")
	fs.StringVar(&cmd.FullName, "name", "", "Full name (required)")
	fs.StringVar(&cmd.Phone, "phone", "", "Phone number (required)")
	fs.StringVar(&cmd.Address, "address", "", "Postal address (required)")
	fs.StringVar(&cmd.Role, "role", string(entities.RoleAdmin), "Role: student, employer or admin")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the portal database")
	fs.IntVar(&cmd.BcryptCost, "bcrypt-cost", 12, "bcrypt cost factor")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <email> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a principal directly in the portal database.\n")
		fmt.Fprintf(os.Stderr, "The same validation rules as the registration form apply.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s=S3cretPass %s create-user -username admin -email admin@example.com \\\n", PasswordEnvVar, os.Args[0])
		fmt.Fprintf(os.Stderr, "    -name \"Site Admin\" -phone 5551234567 -address \"1 Main St\"\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Password == "" {
		cmd.Password = os.Getenv(PasswordEnvVar)
	}

	switch {
	case cmd.Username == "":
		return fmt.Errorf("required flag -username not provided")
	case cmd.Email == "":
		return fmt.Errorf("required flag -email not provided")
	case cmd.Password == "":
		return fmt.Errorf("password not provided: use -password or set %s", PasswordEnvVar)
	}

	return nil
}

func (cmd *CreateUserCommand) request() auth.RegistrationRequest {
	return auth.RegistrationRequest{
		Username:        cmd.Username,
		Password:        cmd.Password,
		ConfirmPassword: cmd.Password,
		Email:           cmd.Email,
		FullName:        cmd.FullName,
		Phone:           cmd.Phone,
		Address:         cmd.Address,
	}
}

func (cmd *CreateUserCommand) logger() *slog.Logger {
	level := "warn"
	if cmd.Verbose {
		level = "debug"
	}
	return logging.Setup("jobportal-cli", "", "text", level, nil)
}

func (cmd *CreateUserCommand) Run() error {
	logger := cmd.logger()

	db, err := database.NewDatabase(cmd.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(
		principals.NewRepository(db.DB),
		notify.NewLogNotifier(logger),
		auth.NewHasher(cmd.BcryptCost),
		auth.DefaultPasswordPolicy(),
		logger,
	)
	return cmd.create(service)
}

func (cmd *CreateUserCommand) create(service *auth.Service) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	principal, err := service.CreatePrincipal(ctx, cmd.request(), entities.Role(cmd.Role))
	if err != nil {
		if apperrors.Is(err, apperrors.KindValidation) {
			return fmt.Errorf("could not create user: %s", apperrors.PublicMessage(err))
		}
		return fmt.Errorf("could not create user: %w", err)
	}

	fmt.Fprintf(cmd.out, "Created %s %q (id %d, %s)\n", principal.Role, principal.Username, principal.ID, principal.Email)
	return nil
}
