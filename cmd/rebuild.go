package cmd

import (
	"context"
	"fmt"

	"github.com/haierkeys/menu-tree-service/pkg/convert"

	"github.com/spf13/cobra"
)

func init() {
	var configPath string

	rebuildCommand := &cobra.Command{
		Use:   "rebuild [-c config_file]",
		Short: "Rebuild module links from the declarations dir // 按声明目录重建模块链接",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			env, err := openCommandEnv(ctx, configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			res, err := env.app.Rebuild(ctx)
			if err != nil {
				return err
			}
			out, err := convert.ToJSON(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	rootCmd.AddCommand(rebuildCommand)
	rebuildCommand.Flags().StringVarP(&configPath, "config", "c", "", "config file")
}
