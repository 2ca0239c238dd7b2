package main

import "github.com/calegray/novelbind/cmd"

func main() {
	cmd.Execute()
}
