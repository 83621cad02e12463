// membench is a diagnostic micro-benchmark for the memory subsystem. One
// process, one run, textual report on standard output.
package main

import "github.com/sarchlab/membench/cmd"

func main() {
	cmd.Execute()
}
