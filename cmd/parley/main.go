package main

import (
	"parley/cmd/cli"
)

func main() {
	cli.RunCLI()
}
