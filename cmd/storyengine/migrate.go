package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"storyengine/internal/persistence"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := persistence.Open(cfg.Database.ConnectionString, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			if err := persistence.Migrate(db.Conn(), databaseNameFromDSN(cfg.Database.ConnectionString)); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			return nil
		},
	}
}

// databaseNameFromDSN pulls the database name out of a postgres:// URL for
// golang-migrate's driver identifier, falling back to a fixed label for any
// non-URL connection string (key=value DSNs are also valid for lib/pq).
func databaseNameFromDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.Path == "" {
		return "storyengine"
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "storyengine"
	}
	return name
}
