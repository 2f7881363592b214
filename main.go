package main

import "github.com/ValentinKolb/restkv/cmd"

func main() {
	cmd.Execute()
}
