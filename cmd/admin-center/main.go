// Package main is the entry point for the admin center service.
package main

import (
	"os"

	"github.com/kart-io/admin-guard/internal/admincenter"
)

func main() {
	if err := admincenter.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
