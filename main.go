// Command flymake builds, tests, and packages C/C++ projects.
package main

import "flymake/internal/cli"

func main() {
	cli.Execute()
}
