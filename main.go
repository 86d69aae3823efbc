package main

import "github.com/nextlevelbuilder/dictaflow/cmd"

func main() {
	cmd.Execute()
}
