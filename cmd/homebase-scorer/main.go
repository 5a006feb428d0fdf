package main

import "github.com/vigilz/homebase/cmd/homebase-scorer/cmd"

func main() {
	cmd.Execute()
}
