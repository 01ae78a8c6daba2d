package main

import "github.com/gabvrl/revisor/internal/commands"

func main() {
	commands.Execute()
}
