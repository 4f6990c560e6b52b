package main

import (
	"os"

	"github.com/AnyUserName/idphoto-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
