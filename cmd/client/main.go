package main

import "github.com/mcoot/chatrelay-go/internal/cli"

func main() {
	cli.Execute()
}
