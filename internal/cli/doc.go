// Package cli provides command-line interface setup and configuration
// for kotoba. It defines the root, serve and history commands, binds their
// flags to viper keys and loads the configuration file and environment.
package cli
