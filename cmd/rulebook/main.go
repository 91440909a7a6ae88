package main

import "github.com/dgallion1/rulebook/internal/cli"

func main() {
	cli.Execute()
}
