package main

import "github.com/sant0-9/heartgpt/internal/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
