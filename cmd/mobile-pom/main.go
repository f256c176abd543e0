package main

import "github.com/devicelab-dev/mobile-pom/pkg/cli"

func main() {
	cli.Execute()
}
