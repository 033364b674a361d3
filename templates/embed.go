// Package templates embeds the default taskscan configuration.
package templates

import "embed"

//go:embed config.yaml
var FS embed.FS

// DefaultConfig returns the embedded default configuration file.
func DefaultConfig() []byte {
	content, err := FS.ReadFile("config.yaml")
	if err != nil {
		// The file is embedded at build time; failure here is a build defect.
		panic(err)
	}
	return content
}
