package main

import (
	"log"

	"github.com/seven011/searchgate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
