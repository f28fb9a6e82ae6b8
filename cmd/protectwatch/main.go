// protectwatch scores principal risk, checks officer credentials and plans
// Martyn's Law compliance for venues.
package main

import "github.com/ppiankov/protectwatch/internal/cli"

func main() {
	cli.Execute()
}
