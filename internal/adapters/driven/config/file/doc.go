// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML (or YAML) configuration with environment overrides
//   - PromptStore: user-editable prompt templates
package file
