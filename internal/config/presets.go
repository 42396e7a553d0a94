package config

import "sort"

// Preset is a pair of service endpoints for a hosted environment.
type Preset struct {
	OAuthURL string
	AuthURL  string
}

// Presets are the known server environments.
var Presets = map[string]Preset{
	"prod": {
		OAuthURL: "https://oauth.accounts.firefox.com",
		AuthURL:  "https://api.accounts.firefox.com",
	},
	"stage": {
		OAuthURL: "https://oauth.stage.mozaws.net",
		AuthURL:  "https://api-accounts.stage.mozaws.net",
	},
	"stable": {
		OAuthURL: "https://oauth-stable.dev.lcip.org",
		AuthURL:  "https://stable.dev.lcip.org/auth",
	},
	"latest": {
		OAuthURL: "https://oauth-latest.dev.lcip.org",
		AuthURL:  "https://latest.dev.lcip.org/auth",
	},
}

// EnvNames returns the preset names in sorted order.
func EnvNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
