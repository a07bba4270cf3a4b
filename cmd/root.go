package cmd

import (
	"embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// linkFiles 内置的示例声明文件，声明目录不存在时写出
var linkFiles embed.FS
var configDefault string
var rootCmd = &cobra.Command{
	Use:   "menu-tree-service",
	Short: "Menu Tree Service",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpTemplate()
		cmd.Help()
	},
}

func Execute(efs embed.FS, c string) {
	linkFiles = efs
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
