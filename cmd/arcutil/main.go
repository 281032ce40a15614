package main

import "arcutil/internal/cli"

func main() {
	cli.Execute()
}
