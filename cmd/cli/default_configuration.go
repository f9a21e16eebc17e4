package cli

import _ "embed"

//go:embed default_config.yaml
var defaultConfigurationDocument []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded default
// configuration document and its type identifier. The document seeds the
// configuration loader so every install starts from the same logging defaults
// and an empty controls list.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	documentCopy := make([]byte, len(defaultConfigurationDocument))
	copy(documentCopy, defaultConfigurationDocument)
	return documentCopy, configurationFileTypeConstant
}
