package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/service"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cliIdentity attributes audit entries written by operator commands.
var cliIdentity = domain.Identity{EmployeeCode: "SYSTEM", Name: "wardtrack cli", IsAdmin: true}

func main() {
	rootCmd := &cobra.Command{
		Use:           "wardtrack",
		Short:         "Inpatient ward tracking service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(employeeCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrap, _ := cmd.Flags().GetString("bootstrap-admin")
			return runServer(cmd.Context(), bootstrap)
		},
	}
	cmd.Flags().String("bootstrap-admin", "", "Create an admin with this employee code if it does not exist")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Database.Driver != "postgres" {
				return fmt.Errorf("migrate requires DB_DRIVER=postgres, got %q", cfg.Database.Driver)
			}
			db, err := database.Connect(cfg.Database)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()
			if err := database.Migrate(db, log); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Schema is up to date.")
			return nil
		},
	}
}

func employeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employees",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register an employee who can log in with their code",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, _ := cmd.Flags().GetString("code")
			name, _ := cmd.Flags().GetString("name")
			admin, _ := cmd.Flags().GetBool("admin")
			if code == "" || name == "" {
				return errors.New("--code and --name are required")
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if cfg.Database.Driver != "postgres" {
				return errors.New("employee create needs a persistent store; set DB_DRIVER=postgres")
			}
			st, err := openStores(cfg, log, nil)
			if err != nil {
				return err
			}
			defer st.close()

			m := metrics.NewCollector(metricsNamespace, prometheus.NewRegistry())
			audit := service.NewAuditService(st.audit, m, log)
			defer audit.Shutdown()

			role := domain.RoleStaff
			if admin {
				role = domain.RoleAdmin
			}
			e, err := service.NewEmployeeService(st.employees, audit, log).
				Create(context.Background(), cliIdentity, service.CreateEmployeeCommand{Code: code, Name: name, Role: role})
			if err != nil {
				return err
			}
			fmt.Printf("Created %s %s (%s) with role %s\n", e.Code, e.Name, e.ID, e.Role)
			return nil
		},
	}
	createCmd.Flags().String("code", "", "Employee code used to log in")
	createCmd.Flags().String("name", "", "Display name")
	createCmd.Flags().Bool("admin", false, "Grant the admin role")

	cmd.AddCommand(createCmd)
	return cmd
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
