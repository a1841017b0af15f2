// Package config loads and validates subtrans settings.
//
// Values are layered: built-in defaults, an optional TOML file, a .env file in
// the working directory, the process environment and finally command-line
// flags applied by the caller. Credentials end up as plain fields on Config
// and are handed to backend constructors explicitly; the process environment
// is only ever read.
package config
