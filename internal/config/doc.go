// Package config provides the run configuration of hashstatic: the values
// derived from command-line flags, the optional YAML configuration file
// that supplies defaults for them, and the XDG locations used for
// persistent data.
package config
