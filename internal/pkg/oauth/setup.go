package oauth

import (
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	redisstorage "github.com/gofiber/storage/redis"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/DanielHoffmann/AuthGate/internal/pkg/cache"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/env"
)

// Setup registers Goth providers for which credentials are configured and
// wires the OAuth state store. Providers without credentials are left
// unregistered so their routes are never installed; Providers() reports
// which ones are live. Safe to call multiple times.
func Setup() {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}

	var providers []goth.Provider
	if key, secret := env.GetEnv("GOOGLE_KEY", ""), env.GetEnv("GOOGLE_SECRET", ""); key != "" && secret != "" {
		providers = append(providers, google.New(
			key, secret,
			base+"/auth/google/callback",
			"email", "profile",
		))
	}
	if key, secret := env.GetEnv("GITHUB_KEY", ""), env.GetEnv("GITHUB_SECRET", ""); key != "" && secret != "" {
		providers = append(providers, github.New(
			key, secret,
			base+"/auth/github/callback",
			"user:email",
		))
	}
	goth.UseProviders(providers...)

	if len(providers) == 0 {
		return
	}

	// OAuth state via Redis, using same connection as app sessions (separate DB)
	cacheClient := cache.GetClient()
	cacheOpts := cacheClient.Options()
	host, port := "127.0.0.1", 6379
	if cacheOpts != nil && cacheOpts.Addr != "" {
		if h, p, err := net.SplitHostPort(cacheOpts.Addr); err == nil {
			host = h
			if parsed, e := strconv.Atoi(p); e == nil {
				port = parsed
			}
		} else {
			host = cacheOpts.Addr
		}
	}

	gothfiber.SessionStore = session.New(session.Config{
		Storage: redisstorage.New(redisstorage.Config{
			Host:     host,
			Port:     port,
			Username: cacheOpts.Username,
			Password: cacheOpts.Password,
			Database: 2,
			Reset:    false,
		}),
		KeyLookup:      "cookie:" + gothic.SessionName,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   !env.IsDev(),
		Expiration:     72 * time.Hour,
	})
}

// Enabled reports whether at least one OAuth provider is registered.
func Enabled() bool {
	return len(goth.GetProviders()) > 0
}

// Providers lists the names of the registered providers in stable order.
func Providers() []string {
	names := make([]string, 0, len(goth.GetProviders()))
	for name := range goth.GetProviders() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
