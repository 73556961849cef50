package main

import "github.com/evanly-gh/remember-me/cmd"

func main() {
	cmd.Execute()
}
