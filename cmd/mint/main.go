// Command mint issues a bearer token from JWT_SECRET, for ops and testing.
package main

import (
	"fmt"
	"os"

	"github.com/gaowanliang/TG-Gallery/internal/auth"
)

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}

	user := "admin"
	if len(os.Args) > 1 {
		user = os.Args[1]
	}

	token, err := auth.NewTokenIssuer(secret).Issue(user)
	if err != nil {
		panic(err)
	}

	fmt.Println(token)
}
