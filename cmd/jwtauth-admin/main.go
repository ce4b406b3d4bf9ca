package main

import (
	"github.com/turtacn/jwtauth/cmd/cli"
)

func main() {
	cli.Execute()
}
