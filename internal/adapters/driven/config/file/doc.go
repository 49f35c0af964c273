// Package file provides file-based implementations of driven port interfaces.
// These adapters read configuration and prompts from the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration, flattened to dot keys
//   - PromptStore: user-editable prompt templates with embedded defaults
//   - LoadDotEnv: .env loading into the process environment
package file
