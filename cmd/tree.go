package cmd

import (
	"context"
	"fmt"

	"github.com/haierkeys/menu-tree-service/internal/domain"
	"github.com/haierkeys/menu-tree-service/internal/dto"
	"github.com/haierkeys/menu-tree-service/pkg/convert"

	"github.com/spf13/cobra"
)

type treeFlags struct {
	config string
	params domain.TreeParameters
}

func init() {
	flags := new(treeFlags)

	treeCommand := &cobra.Command{
		Use:   "tree <menu> [-c config_file]",
		Short: "Export a menu tree as JSON // 导出菜单树",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			env, err := openCommandEnv(ctx, flags.config)
			if err != nil {
				return err
			}
			defer env.Close()

			entries, err := env.app.LinkService.LoadTree(ctx, args[0], flags.params)
			if err != nil {
				return err
			}
			list, err := dto.NewTreeDTO(entries)
			if err != nil {
				return err
			}
			out, err := convert.ToJSON(list)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	rootCmd.AddCommand(treeCommand)
	fs := treeCommand.Flags()
	fs.StringVarP(&flags.config, "config", "c", "", "config file")
	fs.IntVar(&flags.params.MinDepth, "min-depth", 0, "skip levels above this depth")
	fs.IntVar(&flags.params.MaxDepth, "max-depth", 0, "number of levels to export, 0 for all")
	fs.BoolVar(&flags.params.ExpandAll, "all", true, "expand collapsed links")
	fs.BoolVar(&flags.params.OnlyEnabled, "only-enabled", false, "hide disabled links and their subtrees")
}
