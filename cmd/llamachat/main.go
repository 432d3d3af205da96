package main

import "llamachat/internal/commands"

func main() {
	commands.Execute()
}
