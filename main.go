package main

import (
	cmd "gullak/cmd/cli"
)

func main() {
	cmd.Execute()
}
