package main

import "github.com/nvialar/rekordfin/cmd"

func main() {
	cmd.Execute()
}
