package keyholectl

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v2"

	"github.com/keyhole-io/keyhole/pkg/options"
)

type fileConfig struct {
	Verbose   bool   `yaml:"verbose"`
	App       string `yaml:"app"`
	SpoolPort int    `yaml:"spool_port"`
	CreatedBy string `yaml:"createdby"`
}

func (top *Options) readConfigValues(c *Config) error {
	if err := top.prepareViperConfig(); err != nil {
		return err
	}

	c.verbose = viper.GetBool("verbose")
	c.app = viper.GetString("app")
	c.spoolPort = viper.GetInt("spool_port")
	return nil
}

func writeDefaultConfigFile(fp string) error {
	fmt.Printf("Keyhole config file not found. Writing default config to %v.\n", fp)
	def := fileConfig{
		Verbose:   true,
		App:       "",
		SpoolPort: options.DefaultPort,
		CreatedBy: "keyhole-initialization",
	}
	out, err := yaml.Marshal(def)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(fp, out, 0644)
}

// This needs to be called before viper can read any config values
func (top *Options) prepareViperConfig() error {
	if top.Internal.ConfigLoaded {
		// only load the config once
		return nil
	}

	keyholeDir, err := keyholeDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(keyholeDir, 0755); err != nil {
		return err
	}
	configFile := filepath.Join(keyholeDir, "config.yaml")
	if _, err := os.Stat(configFile); err != nil {
		if err := writeDefaultConfigFile(configFile); err != nil {
			return err
		}
	}

	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("Can't read config: %v", err)
	}
	top.Internal.ConfigLoaded = true
	return nil
}

func keyholeDir() (string, error) {
	// Find home directory.
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, options.ConfigDirName), nil
}
