package main

import (
	"os"
)

// BuildVersion is set at link time
var BuildVersion = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
