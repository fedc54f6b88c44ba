// Package config loads the rex runner configuration.
//
// Viper merges, in increasing precedence, built-in defaults, an optional
// config file (.rex/config.yaml in the working directory, then
// $XDG_CONFIG_HOME/rex/config.yaml), REX_* environment variables and the
// command-line flags the user set:
//
//	cfg, err := config.Load(config.WithFlags(cmd.Flags()))
//
// Env files given with --env-file are read with godotenv without touching
// the process environment; RunnerConfig.Environment layers them over the
// process env and under --env pairs.
package config
