package main

import "seqtag/cmd/seqtag-cli/cmd"

func main() {
	cmd.Execute()
}
