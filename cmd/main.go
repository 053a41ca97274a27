package main

import "github.com/kerbaras/minty/cmd/minty"

func main() {
	minty.Execute()
}
