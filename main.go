package main

import "github.com/LegacyCodeHQ/djdep/cmd"

func main() {
	cmd.Execute()
}
