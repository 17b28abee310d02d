package main

import (
	"os"

	"github.com/IANDYI/maternal-care-service/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
