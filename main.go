package main

import (
	"embed"

	"github.com/haierkeys/menu-tree-service/cmd"
)

//go:embed config/links
var efs embed.FS

//go:embed config/config.yaml
var c string

func main() {
	cmd.Execute(efs, c)
}
