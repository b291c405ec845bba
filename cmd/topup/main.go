package main

import "github.com/vietddude/topup/internal/cli"

func main() {
	cli.Execute()
}
