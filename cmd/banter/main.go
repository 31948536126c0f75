package main

import "github.com/okeefe/banter/internal/cli"

func main() {
	cli.Execute()
}
