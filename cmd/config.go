package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/joescharf/itlog/internal/output"
)

var configForce bool

// configDirFunc returns the config directory path, replaceable in tests.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "itlog"), nil
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show the effective itlog settings and where the issue stores live.

Bare 'itlog config' is the same as 'itlog config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write config.yaml from the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show settings, their sources, and store file status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, err := configFilePath()
		if err != nil {
			return err
		}
		ui.Println(cfgPath)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// fileConfig is the on-disk shape of config.yaml. Pointer fields tell an
// absent key from an empty one.
type fileConfig struct {
	CSVPath    *string          `yaml:"csv_path,omitempty"`
	JSONPath   *string          `yaml:"json_path,omitempty"`
	SQLitePath *string          `yaml:"sqlite_path,omitempty"`
	Anthropic  *anthropicConfig `yaml:"anthropic,omitempty"`
}

type anthropicConfig struct {
	APIKey *string `yaml:"api_key,omitempty"`
	Model  *string `yaml:"model,omitempty"`
}

// readFileConfig decodes the config file. A missing file returns nil, nil.
func readFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	fc := &fileConfig{}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// has reports whether key is present in the file.
func (fc *fileConfig) has(key string) bool {
	if fc == nil {
		return false
	}
	switch key {
	case "csv_path":
		return fc.CSVPath != nil
	case "json_path":
		return fc.JSONPath != nil
	case "sqlite_path":
		return fc.SQLitePath != nil
	case "anthropic.api_key":
		return fc.Anthropic != nil && fc.Anthropic.APIKey != nil
	case "anthropic.model":
		return fc.Anthropic != nil && fc.Anthropic.Model != nil
	}
	return false
}

// renderConfig builds a commented config.yaml holding the current settings.
// The API key is never written out.
func renderConfig() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	addPath := func(key, comment string) {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key, HeadComment: comment},
			&yaml.Node{Kind: yaml.ScalarNode, Value: viper.GetString(key), Style: yaml.DoubleQuotedStyle},
		)
	}
	addPath("csv_path", "# itlog configuration (see: itlog config show)\n# CSV store, relative to the working directory")
	addPath("json_path", "# JSON store, relative to the working directory")
	addPath("sqlite_path", "# Optional SQLite mirror of every logged issue; empty disables it")

	anthropic := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "model"},
		{Kind: yaml.ScalarNode, Value: viper.GetString("anthropic.model"), Style: yaml.DoubleQuotedStyle},
	}}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "anthropic", HeadComment: "# Type suggestions for 'itlog suggest' and 'itlog log --auto-type'.\n# Set api_key here or export ANTHROPIC_API_KEY."},
		anthropic,
	)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	data, err := renderConfig()
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		ui.Println(string(data))
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	return nil
}

// settingKeys are shown by config show, in order.
var settingKeys = []string{"csv_path", "json_path", "sqlite_path", "anthropic.model", "anthropic.api_key"}

// envVarFor maps a key to the variable viper reads it from.
func envVarFor(key string) string {
	return "ITLOG_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// settingSource reports where the effective value of key comes from.
func settingSource(key string, fc *fileConfig) string {
	if env := envVarFor(key); os.Getenv(env) != "" {
		return "env: " + env
	}
	if fc.has(key) {
		return "file"
	}
	if key == "anthropic.api_key" && os.Getenv("ANTHROPIC_API_KEY") != "" {
		return "env: ANTHROPIC_API_KEY"
	}
	return "default"
}

// settingValue renders a value for display, hiding the API key.
func settingValue(key string) string {
	v := viper.GetString(key)
	if key == "anthropic.api_key" {
		if v == "" && os.Getenv("ANTHROPIC_API_KEY") == "" {
			return "(not set)"
		}
		return "(set)"
	}
	if v == "" {
		return "-"
	}
	return v
}

// storeStatus resolves a store path and describes the file behind it.
func storeStatus(path string) (string, string) {
	if path == "" {
		return "-", "disabled"
	}
	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return path, output.Red(err.Error())
	}
	info, err := os.Stat(abs)
	switch {
	case err == nil:
		return abs, output.Green(fmt.Sprintf("exists (%d bytes)", info.Size()))
	case errors.Is(err, fs.ErrNotExist):
		return abs, output.Yellow("missing")
	default:
		return abs, output.Red(err.Error())
	}
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}
	fc, err := readFileConfig(cfgPath)
	if err != nil {
		return err
	}

	if fc != nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	ui.Println()

	settings := ui.Table([]string{"Key", "Value", "Source"})
	for _, key := range settingKeys {
		_ = settings.Append([]string{key, settingValue(key), settingSource(key, fc)})
	}
	if err := settings.Render(); err != nil {
		return err
	}
	ui.Println()

	stores := ui.Table([]string{"Store", "Path", "Status"})
	for _, name := range []string{"csv", "json", "sqlite"} {
		path, status := storeStatus(viper.GetString(name + "_path"))
		_ = stores.Append([]string{name, path, status})
	}
	return stores.Render()
}
