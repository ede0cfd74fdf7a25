package main

import "stepscope/internal/commands"

func main() {
	commands.Execute()
}
