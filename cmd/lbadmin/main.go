// Command lbadmin is the operator CLI for the Linkbox subscription store.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(wireApp).Execute(); err != nil {
		os.Exit(1)
	}
}
