// Command tsctl is the operator CLI of the volunteer portal: schema
// migrations, admin accounts, housekeeping and approved-hours exports.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
