package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/kotoba/internal"
)

// StateDir returns the directory kotoba keeps its state in
func StateDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "kotoba")
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kotoba [text]",
		Short: "Japanese study helper: hiragana, romanji and Spanish translation",
		Long: `kotoba sends a word or phrase to a translation endpoint and shows its
hiragana, romanji, Spanish translation and pronunciation, optionally
playing the spoken Japanese.

Examples:
  kotoba                       # Launch interactive GUI (default)
  kotoba こんにちは              # Translate in the terminal
  kotoba --format html 猫        # Print the result as HTML paragraphs
  kotoba serve                 # Run the /traducir endpoint
  kotoba history -n 5          # Show the last five translations`,
		Args:    cobra.MaximumNArgs(1),
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

// CreateServeCommand creates the command running the translation endpoint
func CreateServeCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the translation endpoint",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().StringVar(&flags.Listen, "listen", flags.Listen, "Listen address (default :5000, or :$PORT)")
	cmd.Flags().StringVar(&flags.PublicURL, "public-url", "", "URL prefix for audio links (default: relative links)")
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Translation backend: openai or gemini")
	cmd.Flags().StringVar(&flags.Fallback, "fallback", "", "Fallback translation backend")
	cmd.Flags().BoolVar(&flags.NoSpeech, "no-speech", false, "Do not synthesise audio clips")
	cmd.Flags().BoolVar(&flags.AccessLog, "access-log", flags.AccessLog, "Log every request")

	viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))
	viper.BindPFlag("server.public_url", cmd.Flags().Lookup("public-url"))
	viper.BindPFlag("translate.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translate.fallback", cmd.Flags().Lookup("fallback"))

	return cmd
}

// CreateHistoryCommand creates the command listing recent translations
func CreateHistoryCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent translations answered by the local endpoint",
		Args:  cobra.NoArgs,
	}

	cmd.Flags().IntVarP(&flags.Limit, "limit", "n", flags.Limit, "Number of entries to show")

	return cmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	defaultDB := filepath.Join(StateDir(), "history.db")

	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.kotoba.yaml)")
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Print every API response")
	cmd.PersistentFlags().StringVar(&flags.HistoryDB, "db", defaultDB, "History database")

	// Local flags
	cmd.Flags().StringVarP(&flags.ServerURL, "server", "s", flags.ServerURL, "Translation server URL")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Request timeout (0 waits indefinitely)")
	cmd.Flags().StringVarP(&flags.Format, "format", "f", flags.Format, "Output format: text or html")
	cmd.Flags().BoolVar(&flags.NoAudio, "no-audio", false, "Do not play audio")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available OpenAI models for the current API key")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("client.server_url", cmd.Flags().Lookup("server"))
	viper.BindPFlag("client.timeout", cmd.Flags().Lookup("timeout"))
	viper.BindPFlag("client.format", cmd.Flags().Lookup("format"))
	viper.BindPFlag("history.db", cmd.PersistentFlags().Lookup("db"))
}

// setDefaults registers the defaults of keys without a flag
func setDefaults() {
	viper.SetDefault("client.audio", true)
	viper.SetDefault("translate.provider", "openai")
	viper.SetDefault("translate.openai_model", "gpt-4o-mini")
	viper.SetDefault("translate.gemini_model", "gemini-2.0-flash")
	viper.SetDefault("translate.breaker_failures", 5)
	viper.SetDefault("translate.breaker_cooldown", 30*time.Second)
	viper.SetDefault("audio.enabled", true)
	viper.SetDefault("audio.provider", "openai")
	viper.SetDefault("audio.format", "mp3")
	viper.SetDefault("audio.openai_model", "gpt-4o-mini-tts")
	viper.SetDefault("audio.openai_voice", "nova")
	viper.SetDefault("audio.openai_speed", 0.9)
	viper.SetDefault("audio.ttl", 10*time.Minute)
	viper.SetDefault("audio.dir", filepath.Join(StateDir(), "audio"))
	viper.SetDefault("audio.cache_dir", filepath.Join(StateDir(), "cache"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// A .env file in the working directory feeds the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}

	setDefaults()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".kotoba" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kotoba")
	}

	// Environment variables
	viper.SetEnvPrefix("KOTOBA")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("gemini_key")
}
