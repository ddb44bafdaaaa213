package main

import "github.com/alexiusacademia/gotno/cmd"

func main() {
	cmd.Execute()
}
