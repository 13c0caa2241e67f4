// Package main provides xoso, an offline companion to the LINE bot: the
// number generators, the phong thủy reading and result imports.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
