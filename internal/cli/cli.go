// Package cli is the command-line front end: it parses arguments, calls
// into the expense service, and formats results. Domain rules live in
// the service; this layer only maps them to flags, messages, and exit
// codes.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"spend/internal/backend"
	"spend/internal/config"
	"spend/internal/log"
	"spend/internal/services"
)

// App holds the wired-up service and the streams command output goes to.
type App struct {
	service *services.ExpenseService
	stdout  io.Writer
	stderr  io.Writer
	logger  *log.Logger
}

func NewApp(service *services.ExpenseService, stdout, stderr io.Writer, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &App{
		service: service,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger.WithComponent(log.ComponentCLI),
	}
}

// Main wires the application from the environment and runs one command.
// It returns the process exit code.
func Main(args []string) int {
	LoadEnvFile()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := SetupLogger(cfg)
	logger = logger.With(log.FieldRunID, uuid.NewString())

	factory := backend.NewFactory(logger)
	res, err := factory.Create(backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		RecordPath:   cfg.RecordPath,
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	service := services.NewExpenseService(res.Store)
	defer func() {
		if err := service.Close(); err != nil {
			logger.Warn("Failed to close store", log.FieldError, err)
		}
	}()

	app := NewApp(service, os.Stdout, os.Stderr, logger)
	return app.Run(args)
}

// SetupLogger initializes structured logging on stderr and sets it as
// the default logger.
func SetupLogger(cfg *config.Config) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as the file is optional.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// Run dispatches one subcommand. It returns 0 on success, 1 on failure.
func (a *App) Run(args []string) int {
	if len(args) == 0 {
		a.usage()
		return 1
	}

	command, rest := args[0], args[1:]
	a.logger.Debug("Running command", log.FieldCommand, command)

	var err error
	switch command {
	case "add":
		err = a.cmdAdd(rest)
	case "list":
		err = a.cmdList(rest)
	case "update":
		err = a.cmdUpdate(rest)
	case "delete":
		err = a.cmdDelete(rest)
	case "summary":
		err = a.cmdSummary(rest)
	case "categories":
		err = a.cmdCategories(rest)
	case "export":
		err = a.cmdExport(rest)
	case "budget":
		err = a.cmdBudget(rest)
	case "help", "-h", "--help":
		a.usage()
		return 0
	default:
		fmt.Fprintf(a.stderr, "Error: unknown command %q\n", command)
		a.usage()
		return 1
	}

	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		a.logger.Debug("Command failed", log.FieldCommand, command, log.FieldError, err)
		return 1
	}
	return 0
}

func (a *App) usage() {
	fmt.Fprint(a.stderr, `Usage: spend <command> [flags]

Commands:
  add         Add an expense (--description, --amount, [--category], [--date])
  list        List expenses ([--category])
  update      Update an expense by id (--id, [--description], [--amount], [--category])
  delete      Delete an expense by id (--id)
  summary     Show total expenses ([--month], [--year])
  categories  List distinct categories
  export      Export expenses to CSV (--out)
  budget      Set or show monthly budgets (set|show)
  help        Show this help
`)
}
