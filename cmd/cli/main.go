// Command shopctl is a CLI client for the shopguard API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "shopguard")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shopguard")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp})
}

var errLoginRequired = errors.New("no valid token (login required)")

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return "", errLoginRequired
	}
	return tf.AccessToken, nil
}

func clearToken() error {
	err := os.Remove(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ---- utils ----

func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

const usageText = `shopctl CLI
Usage:
  shopctl [-url http://HOST:PORT] [-timeout 10s] <cmd> [args]

Commands:
  version
  register      -e <email> -p <password>
  login         -e <email> -p <password>          (saves token)
  logout
  users                                           (admin listing, needs login)
  submit-key    -k <key>
  nft-status
  mint-listen
  wallet-verify -a <address>
  wallet-watch  -a <address>
`

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		cancel()
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run parses global flags and dispatches one subcommand.
func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("shopctl", flag.ContinueOnError)
	fs.SetOutput(out)
	baseURL := fs.String("url", envOr("SHOPGUARD_URL", "http://localhost:3000"), "server base URL")
	timeout := fs.Duration("timeout", 10*time.Second, "per-request timeout")
	fs.Usage = func() { fmt.Fprint(out, usageText) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return flag.ErrHelp
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]
	c := newClient(*baseURL, *timeout)

	switch cmd {
	case "version":
		fmt.Fprintf(out, "shopctl %s (%s)\n", version, buildDate)
		return nil

	case "register", "login":
		sub := flag.NewFlagSet(cmd, flag.ContinueOnError)
		sub.SetOutput(out)
		email := sub.String("e", "", "email")
		password := sub.String("p", "", "password")
		if err := sub.Parse(rest); err != nil {
			return err
		}
		if *email == "" || *password == "" {
			return errors.New("need -e and -p")
		}
		if cmd == "register" {
			r, err := c.register(ctx, *email, *password)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, r.ID)
			return nil
		}
		s, err := c.login(ctx, *email, *password)
		if err != nil {
			return err
		}
		exp := s.ExpiresAt
		if exp.IsZero() {
			exp = time.Now().Add(15 * time.Minute)
		}
		if err := saveToken(s.Token, exp); err != nil {
			return err
		}
		fmt.Fprintln(out, "ok")
		return nil

	case "logout":
		tok, err := loadToken()
		if err != nil {
			return err
		}
		if err := c.logout(ctx, tok); err != nil {
			return err
		}
		return clearToken()

	case "users":
		tok, err := loadToken()
		if err != nil {
			return err
		}
		rows, err := c.users(ctx, tok)
		if err != nil {
			return err
		}
		printJSON(out, rows)
		return nil

	case "submit-key":
		sub := flag.NewFlagSet(cmd, flag.ContinueOnError)
		sub.SetOutput(out)
		key := sub.String("k", "", "key material")
		if err := sub.Parse(rest); err != nil {
			return err
		}
		env, err := c.submitKey(ctx, *key)
		if err != nil {
			return err
		}
		printJSON(out, env)
		return nil

	case "nft-status":
		ok, err := c.nftStatus(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ok)
		return nil

	case "mint-listen":
		env, err := c.mintListen(ctx)
		if err != nil {
			return err
		}
		printJSON(out, env)
		return nil

	case "wallet-verify", "wallet-watch":
		sub := flag.NewFlagSet(cmd, flag.ContinueOnError)
		sub.SetOutput(out)
		addr := sub.String("a", "", "wallet address")
		if err := sub.Parse(rest); err != nil {
			return err
		}
		call := c.walletVerify
		if cmd == "wallet-watch" {
			call = c.walletWatch
		}
		env, err := call(ctx, *addr)
		if err != nil {
			return err
		}
		printJSON(out, env)
		return nil
	}

	fs.Usage()
	return fmt.Errorf("unknown command %q", cmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
