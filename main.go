package main

import (
	"mygame/roulette/internal/handler"
)

func main() {
	handler.Execute()
}
