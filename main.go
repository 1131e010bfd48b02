/*
	Copyright 2023 Markus Papenbrock
*/

package main

import "github.com/mpapenbr/racedb/cmd"

func main() {
	cmd.Execute()
}
