package main

import "github.com/KaramelBytes/bundlesheet-cli/cmd"

func main() {
	cmd.Execute()
}
