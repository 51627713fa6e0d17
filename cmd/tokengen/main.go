// tokengen prints an access token for a principal, for local testing of
// protected endpoints. It reads JWT_SECRET, JWT_ALGORITHM and APP_ENV from
// the environment (or .env) like the server does.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"

	"go-project-hub/internal/auth"
	"go-project-hub/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, args []string, out io.Writer) error {
	var (
		subject int64
		email   string
		ttl     time.Duration
		mock    bool
	)

	flagSet := pflag.NewFlagSet("tokengen", pflag.ContinueOnError)
	flagSet.SetOutput(out)
	flagSet.Int64Var(&subject, "sub", 0, "principal id to put in the sub claim")
	flagSet.StringVar(&email, "email", "", "email claim")
	flagSet.DurationVar(&ttl, "ttl", 0, "token lifetime (default: ACCESS_TOKEN_EXPIRE_MINUTES)")
	flagSet.BoolVar(&mock, "mock", false, "print an unsigned debug token instead (non-production only)")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if subject <= 0 {
		return fmt.Errorf("--sub must be a positive principal id")
	}

	if mock {
		if cfg.IsProduction() {
			return fmt.Errorf("debug tokens are rejected in production")
		}
		_, err := fmt.Fprintf(out, "%s%d\n", auth.DebugTokenPrefix, subject)
		return err
	}

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}

	claims := jwt.MapClaims{"sub": strconv.FormatInt(subject, 10)}
	if email != "" {
		claims["email"] = email
	}

	token, err := issuer.Issue(claims, ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
