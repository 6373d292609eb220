package main

import "github.com/saadjs/cycle-cli/cmd/cycle"

func main() {
	cycle.Execute()
}
