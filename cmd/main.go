package main

import (
	"fmt"
	"os"

	"github.com/rony4d/go-textwindow/cmd/textwindow/launcher"
)

func main() {

	// Hand the full command line to the launcher and capture any resulting error
	if err := launcher.Launch(os.Args); err != nil {

		// Report the issue to stderr so it does not mix with decoded output
		fmt.Fprintln(os.Stderr, "Error:", err)

		// Exit with a non-zero status code to indicate failure
		os.Exit(1)
	}

}
