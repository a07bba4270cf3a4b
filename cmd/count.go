package cmd

import (
	"context"
	"fmt"

	"github.com/haierkeys/menu-tree-service/internal/dto"

	"github.com/gookit/goutil/dump"
	"github.com/spf13/cobra"
)

type countFlags struct {
	config string
	menu   string
	dump   bool
}

func init() {
	flags := new(countFlags)

	countCommand := &cobra.Command{
		Use:   "count [-c config_file] [--menu name]",
		Short: "Count links and pending links // 统计链接数量",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			env, err := openCommandEnv(ctx, flags.config)
			if err != nil {
				return err
			}
			defer env.Close()

			var menu *string
			if flags.menu != "" {
				menu = &flags.menu
			}

			res := &dto.LinkCountDTO{Menu: flags.menu}
			if res.Total, err = env.app.LinkService.CountLinks(ctx, menu); err != nil {
				return err
			}
			if res.Pending, err = env.app.LinkService.CountPending(ctx, flags.menu); err != nil {
				return err
			}

			if flags.dump {
				dump.P(res)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\npending: %d\n", res.Total, res.Pending)
			return nil
		},
	}

	rootCmd.AddCommand(countCommand)
	fs := countCommand.Flags()
	fs.StringVarP(&flags.config, "config", "c", "", "config file")
	fs.StringVar(&flags.menu, "menu", "", "menu name, empty for all menus")
	fs.BoolVar(&flags.dump, "dump", false, "dump the result struct")
}
