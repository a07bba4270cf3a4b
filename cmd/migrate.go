package cmd

import (
	"context"
	"fmt"
	"sort"

	internalApp "github.com/haierkeys/menu-tree-service/internal/app"
	"github.com/haierkeys/menu-tree-service/internal/upgrade"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

func init() {
	var configPath string

	migrateCommand := &cobra.Command{
		Use:   "migrate [-c config_file]",
		Short: "Upgrade database schema to the latest version",
		Long: `Upgrade database schema to the latest version.

This command will check the current database version and apply all pending migrations.
It is safe to run this command multiple times - already applied migrations will be skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			// openCommandEnv 已执行迁移
			env, err := openCommandEnv(ctx, configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			applied, err := upgrade.NewMigrationManager(env.app.DB, env.logger, internalApp.Version, "").AppliedVersions(ctx)
			if err != nil {
				return err
			}
			versions := make([]string, 0, len(applied))
			for v := range applied {
				versions = append(versions, v)
			}
			sort.Slice(versions, func(i, j int) bool { return semver.Compare(versions[i], versions[j]) < 0 })

			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s, applied migrations:\n", internalApp.Name, internalApp.Version)
			for _, v := range versions {
				fmt.Fprintln(cmd.OutOrStdout(), "  "+v)
			}
			return nil
		},
	}

	rootCmd.AddCommand(migrateCommand)
	migrateCommand.Flags().StringVarP(&configPath, "config", "c", "", "config file")
}
