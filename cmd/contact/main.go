package main

import (
	"os"

	"github.com/welldanyogia/webrana-contact-relay/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
