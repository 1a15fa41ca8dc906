// Command prodcfg checks and repairs product component configurations.
package main

import "github.com/mesh-intelligence/prodcfg/internal/cli"

func main() {
	cli.Execute()
}
