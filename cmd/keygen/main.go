// Command keygen prints a new operator API key and the argon2id hash to put
// in auth.api_key_hash (or EWL_AUTH_API_KEY_HASH).
//
// With an argument it hashes that key instead of generating one.
package main

import (
	"fmt"
	"os"

	"ethereum-wallet/internal/service"
)

func main() {
	var key string
	switch len(os.Args) {
	case 1:
		k, err := service.GenerateAPIKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
			os.Exit(1)
		}
		key = k
	case 2:
		key = os.Args[1]
	default:
		fmt.Fprintln(os.Stderr, "usage: keygen [api-key]")
		os.Exit(2)
	}

	hash, err := service.NewArgon2HashService().Hash(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keygen: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("api_key:      %s\napi_key_hash: %s\n", key, hash)
}
