package main

import "github.com/ezoic/coffeestats/cli"

func main() {
	cli.Execute()
}
