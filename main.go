package main

import "github.com/KaramelBytes/colprof/cmd"

func main() {
	cmd.Execute()
}
