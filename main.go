package main

import "github.com/theirongolddev/pagesync/cmd"

func main() {
	cmd.Execute()
}
