package main

import "github.com/imran601021/Resume/internal/cli"

func main() {
	cli.Execute()
}
