package main

import "github.com/MeKo-Tech/termatlas/internal/cmd"

func main() {
	cmd.Execute()
}
