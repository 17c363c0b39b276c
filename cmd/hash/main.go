// Package main is a utility for generating bcrypt hashes of passwords. The
// application stores only bcrypt hashes of account passwords, so this tool is
// used when manually seeding or repairing profile records in the database
// without running the full server. The resulting hash can be inserted directly
// into the profiles table.
package main

import (
	"fmt"
	"os"

	"github.com/inventory-admin/inventory-admin/internal/auth"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <password>\n", os.Args[0])
		os.Exit(1)
	}
	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
