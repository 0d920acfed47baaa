package main

import (
	"os"

	"go-extension-audit/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
