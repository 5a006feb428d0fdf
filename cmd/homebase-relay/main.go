package main

import "github.com/vigilz/homebase/cmd/homebase-relay/cmd"

func main() {
	cmd.Execute()
}
