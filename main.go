package main

import (
	"os"

	"github.com/cristianoliveira/gaudible/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
