// The main package for the rounds-watcher executable.
package main

import (
	"github.com/lmoretti/rounds-watcher/cmd"
)

func main() {
	cmd.Execute()
}
