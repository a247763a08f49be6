package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"gatepass/internal/config"
	"gatepass/internal/db"
	"gatepass/internal/logging"
	"gatepass/internal/repository"
	"gatepass/internal/service"
)

var flagFile *cli.StringFlag = &cli.StringFlag{
	Name:     "file",
	Usage:    "CSV file with item_code,item_description,item_group columns",
	Required: true,
}

var flagUsername *cli.StringFlag = &cli.StringFlag{
	Name:     "username",
	Required: true,
}

var flagPassword *cli.StringFlag = &cli.StringFlag{
	Name:     "password",
	Usage:    "Initial password (or set GATEPASS_PASSWORD)",
	EnvVars:  []string{"GATEPASS_PASSWORD"},
	Required: true,
}

var flagFullName *cli.StringFlag = &cli.StringFlag{
	Name: "full-name",
}

var flagRole *cli.StringFlag = &cli.StringFlag{
	Name:  "role",
	Value: "encoding",
	Usage: "scan_only, encoding or admin",
}

func main() {
	app := &cli.App{
		Name:  "gatepassctl",
		Usage: "administer the gate pass database",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create or update tables and seed the default admin",
				Action: func(cCtx *cli.Context) error {
					env, err := setup()
					if err != nil {
						return err
					}
					seeded, err := env.users().EnsureDefaultAdmin(cCtx.Context, env.cfg.DefaultAdminPassword)
					if err != nil {
						return err
					}
					env.logger.Info("schema up to date", "default_admin_created", seeded)
					return nil
				},
			},
			{
				Name:  "import-products",
				Usage: "bulk import products from CSV, skipping codes already present",
				Flags: []cli.Flag{flagFile},
				Action: func(cCtx *cli.Context) error {
					env, err := setup()
					if err != nil {
						return err
					}
					f, err := os.Open(cCtx.String(flagFile.Name))
					if err != nil {
						return err
					}
					defer f.Close()

					items, err := parseProductsCSV(f)
					if err != nil {
						return err
					}
					svc := service.NewProductService(repository.NewProductRepository(env.db))
					result, err := svc.BulkCreate(cCtx.Context, items)
					if err != nil {
						return err
					}

					fmt.Printf("created: %d\n", result.Created)
					if len(result.Skipped) > 0 {
						fmt.Printf("skipped: %s\n", strings.Join(result.Skipped, ", "))
					}
					return nil
				},
			},
			{
				Name:  "create-user",
				Usage: "add a user account",
				Flags: []cli.Flag{flagUsername, flagPassword, flagFullName, flagRole},
				Action: func(cCtx *cli.Context) error {
					env, err := setup()
					if err != nil {
						return err
					}
					user, err := env.users().CreateUser(cCtx.Context, service.UserInput{
						Username: cCtx.String(flagUsername.Name),
						Password: cCtx.String(flagPassword.Name),
						FullName: cCtx.String(flagFullName.Name),
						Role:     cCtx.String(flagRole.Name),
					})
					if err != nil {
						return err
					}
					fmt.Printf("created user %q (id %d, role %s)\n", user.Username, user.ID, user.Role)
					return nil
				},
			},
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

type environment struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

// setup connects to the configured database and migrates it.
func setup() (*environment, error) {
	cfg := config.Load()
	logger := logging.Setup(logging.Options{
		JSON:    cfg.LogJSON,
		Debug:   cfg.LogDebug,
		Service: "gatepassctl",
	})

	gormDB, err := db.Open(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB); err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, logger: logger, db: gormDB}, nil
}

func (e *environment) users() service.UserService {
	return service.NewUserService(repository.NewUserRepository(e.db), nil)
}
