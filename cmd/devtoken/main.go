// Command devtoken prints a signed access token for local testing. Accounts
// and sign-in live outside this service; the API only verifies tokens.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"artistevents/config"
	"artistevents/internal/adapters/auth"
)

func main() {
	userID := flag.String("user", "", "user id to put in the subject claim (random when empty)")
	email := flag.String("email", "", "email claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("refusing to mint tokens in production")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	sub := *userID
	if sub == "" {
		sub = uuid.NewString()
	} else if _, err := uuid.Parse(sub); err != nil {
		log.Fatalf("invalid user id %q: %v", sub, err)
	}

	token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(sub, *email, nil, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Fprintln(os.Stderr, "user:", sub)
	fmt.Println(token)
}
