package main

import "github.com/junyeong-ai/modmap/cmd"

func main() {
	cmd.Execute()
}
