package main

import "github.com/pfrederiksen/kbo-gamecenter/internal/cli"

func main() {
	cli.Execute()
}
