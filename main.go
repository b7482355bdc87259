package main

import "aurdist/internal/cli"

func main() {
	cli.Execute()
}
