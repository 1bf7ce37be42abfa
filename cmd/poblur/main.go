package main

import (
	"github.com/MeKo-Tech/poblur/cmd/poblur/cmd"
	"github.com/MeKo-Tech/poblur/internal/version"
)

func main() {
	cmd.SetVersionInfo(version.Info())
	cmd.Execute()
}
