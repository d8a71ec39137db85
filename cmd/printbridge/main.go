package main

import (
	"github.com/printbridge/printbridge/bridge/cmd"
)

func main() {
	cmd.Execute()
}
