// keygen generates an Ed25519 signing key pair and writes both halves as
// PEM files for the token service.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourorg/bookingdesk/internal/security/auth"
)

func main() {
	dir := flag.String("dir", ".", "output directory")
	prefix := flag.String("prefix", "jwt", "file name prefix")
	flag.Parse()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}

	privPEM, err := auth.MarshalPrivateKey(priv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}
	pubPEM, err := auth.MarshalPublicKey(pub)
	if err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}

	privPath := filepath.Join(*dir, *prefix+"_private.pem")
	pubPath := filepath.Join(*dir, *prefix+"_public.pem")

	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(pubPath, pubPEM, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "keygen:", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s and %s\n", privPath, pubPath)
}
