package main

import (
	"os"

	"github.com/vihar-s1/bytechef/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
