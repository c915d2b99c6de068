package main

import "github.com/forPelevin/recap/internal/cli"

func main() {
	cli.Main()
}
