package main

import "github.com/dmsanchez/traysim/cmd"

func main() {
	cmd.Execute()
}
