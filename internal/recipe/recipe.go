// Package recipe turns an inventory item into a recipe web search.
package recipe

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// DefaultSearchURL is used when no search engine is configured.
const DefaultSearchURL = "https://www.google.com/search"

// Opener shows a URL to the user.
type Opener func(ctx context.Context, target string) error

// SearchURL returns the search for "recipes with <item>" against base.
func SearchURL(base, item string) (string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return "", fmt.Errorf("item name is empty")
	}
	if strings.TrimSpace(base) == "" {
		base = DefaultSearchURL
	}
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse search url %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("search url %q must be absolute", base)
	}
	q := u.Query()
	q.Set("q", "recipes with "+item)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// OpenBrowser launches the platform's URL handler without waiting for it.
// ctx only gates the launch; the handler outlives it.
func OpenBrowser(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, args := browserCommand(runtime.GOOS, target)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func browserCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}
