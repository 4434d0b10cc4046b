package main

import "github.com/forPelevin/framegrab/internal/cli"

func main() {
	cli.Main()
}
