package main

import "retailshop/internal/cli"

func main() {
	cli.Execute()
}
