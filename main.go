package main

import (
	_ "go.uber.org/automaxprocs"

	"gemrag/cmd"
)

func main() {
	cmd.Execute()
}
