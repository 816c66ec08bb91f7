package main

import (
	"os"

	"spend/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:]))
}
