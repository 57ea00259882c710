package main

import (
	"os"

	"github.com/booruterm/booruterm/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
