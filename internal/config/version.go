package config

// Version is the binary version.
// Set at build time via: -ldflags "-X github.com/agromitra/agromitra/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
