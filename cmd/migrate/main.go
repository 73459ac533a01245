// Command migrate manages the product hub database schema.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/bootstrap"
)

// Exit codes for the migrate command.
const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: migrate <up|down [steps]|version>")
		return exitFailure
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitFailure
	}

	logger, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return exitFailure
	}

	switch os.Args[1] {
	case "up":
		if err := bootstrap.RunMigrations(cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Migration up failed: %v\n", err)
			return exitFailure
		}
		fmt.Println("Migration up completed successfully")

	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil || steps < 1 {
				fmt.Fprintf(os.Stderr, "Invalid steps %q (must be a positive integer)\n", os.Args[2])
				return exitFailure
			}
		}
		if err := bootstrap.RollbackMigrations(cfg, steps, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Migration down failed: %v\n", err)
			return exitFailure
		}
		fmt.Println("Migration down completed successfully")

	case "version":
		version, dirty, err := bootstrap.MigrationVersion(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read migration version: %v\n", err)
			return exitFailure
		}
		fmt.Printf("Version: %d, dirty: %v\n", version, dirty)

	default:
		fmt.Fprintf(os.Stderr, "Invalid command: %q (must be \"up\", \"down\", or \"version\")\n", os.Args[1])
		return exitFailure
	}

	return exitSuccess
}
