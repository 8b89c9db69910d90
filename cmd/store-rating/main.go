package main

import "github.com/bissquit/store-rating/cmd/store-rating/commands"

func main() {
	commands.Execute()
}
