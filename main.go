package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/ekaya-inc/ekaya-codegen/pkg/cli"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cli.Execute(Version)
}
