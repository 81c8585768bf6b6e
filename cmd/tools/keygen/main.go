package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"laptop-request-catalog/internal/auth"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var (
		role   = flag.String("role", "anon", "Role claim (anon for a local PostgREST, service_role for the import endpoint)")
		ttl    = flag.Duration("ttl", 24*time.Hour, "Key lifetime")
		secret = flag.String("secret", os.Getenv("ADMIN_KEY_SECRET"), "Signing secret (defaults to ADMIN_KEY_SECRET)")
		issuer = flag.String("issuer", envOr("ADMIN_KEY_ISSUER", "laptop-request-catalog"), "Issuer claim")
	)
	flag.Parse()

	signer := auth.NewKeySigner(*secret, *issuer)
	if err := signer.ValidateConfig(); err != nil {
		log.Fatalf("Invalid signing configuration: %v", err)
	}

	key, err := signer.Sign(*role, *ttl, time.Now())
	if err != nil {
		log.Fatalf("Failed to sign key: %v", err)
	}

	fmt.Printf("Access key generated successfully!\n\n")
	fmt.Printf("Role: %s\n", *role)
	fmt.Printf("Issuer: %s\n", *issuer)
	fmt.Printf("Expiry: %v\n", *ttl)
	fmt.Printf("\nKey:\n%s\n\n", key)

	fmt.Printf("Usage example:\n")
	if *role == "service_role" {
		fmt.Printf("curl -H \"Authorization: Bearer %s\" -F file=@catalog.xlsx http://localhost:8080/admin/imports/catalog\n", key)
	} else {
		fmt.Printf("DATA_SERVICE_KEY=%s\n", key)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
