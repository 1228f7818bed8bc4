// Command pathviz animates grid path searches in the terminal, renders them to
// PNG and compares strategies on a shared maze.
package main

import (
	"log/slog"
	"os"
)

func main() {
	a := newApp()
	err := a.rootCmd().Execute()
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	if err != nil {
		slog.Error("pathviz failed", "error", err)
		os.Exit(1)
	}
}
