// Command keygen prints a freshly generated master key, base64-encoded for
// use as MFA_MASTER_KEY.
package main

import (
	"fmt"
	"os"

	"mfakit/pkg/secrets"
)

func main() {
	key, err := secrets.GenerateEncodedMasterKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate master key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(key)
}
