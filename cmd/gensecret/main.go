package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

// Minimum length the token manager accepts for its HMAC secret
const SecretKeyBytesLen = 32

func main() {
	b := make([]byte, SecretKeyBytesLen)

	_, err := rand.Read(b)
	if err != nil {
		fmt.Printf("error while generating secret key: %v", err)
		os.Exit(1)
	}

	fmt.Println(hex.EncodeToString(b))
}
