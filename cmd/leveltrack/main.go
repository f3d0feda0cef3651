package main

import (
	"github.com/leveltrack/leveltrack/internal/cli"
)

func main() {
	cli.Execute()
}
