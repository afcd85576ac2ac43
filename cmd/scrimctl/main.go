package main

import "github.com/mcoot/scrimbot/internal/cli"

func main() {
	cli.Execute()
}
