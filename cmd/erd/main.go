package main

import "github.com/hargabyte/erd/internal/cmd"

func main() {
	cmd.Execute()
}
