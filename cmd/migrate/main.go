package main

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fadhilr/go-shop-orders/internal/config"
)

const (
	migrationDir      = "migrations"
	versionTimeFormat = "20060102150405"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{Use: "migrate"}
	rootCmd.AddCommand(
		createMigrationCommand(),
		migrateUpCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func createMigrationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-create [name]",
		Short: "create sql migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := time.Now().Format(versionTimeFormat)
			up := fmt.Sprintf("%s/%s_%s.up.sql", migrationDir, version, args[0])
			down := fmt.Sprintf("%s/%s_%s.down.sql", migrationDir, version, args[0])

			if err := os.WriteFile(up, []byte{}, 0644); err != nil {
				return err
			}
			if err := os.WriteFile(down, []byte{}, 0644); err != nil {
				return err
			}

			fmt.Println("Created SQL up script:", up)
			fmt.Println("Created SQL down script:", down)
			return nil
		},
	}
}

func migrateUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-up",
		Short: "migrate all the way up",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			m, err := migrate.New(
				fmt.Sprintf("file://%s", migrationDir),
				cfg.PostgresDSN,
			)
			if err != nil {
				return err
			}

			err = m.Up()
			if err == migrate.ErrNoChange {
				fmt.Println("No change in migration")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println("Migrated up successfully")
			return nil
		},
	}
}
