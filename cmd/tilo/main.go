package main

import (
	"fmt"
	"os"

	"github.com/tilo-editor/tilo"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: tilo <filename>\n")
		os.Exit(1)
	}

	e, err := tilo.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing editor: %s\n", err)
		os.Exit(1)
	}

	if err := e.Open(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening file: %s\n", err)
		os.Exit(1)
	}

	if err := e.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
