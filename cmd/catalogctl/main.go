package main

import "github.com/shoplens/shopsearch/internal/cli"

func main() {
	cli.Execute()
}
