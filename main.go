package main

import (
	"os"

	"github.com/studybuddy/studybuddy-server/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
