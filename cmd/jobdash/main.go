package main

import "github.com/justsurfingit/jobdash/internal/cli"

func main() {
	cli.Execute()
}
