package main

import (
	"flag"
	"fmt"
	"os"

	"crewtime.app/crewtime/security"
)

// Generates a signed identity token for local testing against the API.
func main() {
	userID := flag.String("user", "", "user id (required)")
	userName := flag.String("name", "dev", "user name")
	email := flag.String("email", "", "user email")
	orgID := flag.String("org", "", "organization id (required)")
	role := flag.String("role", "crew", "org role")
	expires := flag.Int64("expires", 3600, "token lifetime in seconds")
	flag.Parse()

	if *userID == "" || *orgID == "" {
		flag.Usage()
		os.Exit(2)
	}

	secret := os.Getenv("CREWTIME_SIGNING_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "CREWTIME_SIGNING_SECRET is required")
		os.Exit(1)
	}

	token, err := security.CreateIdentityToken(&security.CrewIdentity{
		Id:             *userID,
		UserName:       *userName,
		Email:          *email,
		OrganizationId: *orgID,
		Role:           *role,
	}, secret, *expires)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
