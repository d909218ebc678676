// This program provides a command line tool for hashing, mining and talking
// to a running node.
package main

import "github.com/ardanlabs/powchain/app/tooling/powcli/cmd"

func main() {
	cmd.Execute()
}
