package main

import (
	"github.com/pradiptha/bookstore/cmd"
)

func main() {
	cmd.Start()
}
