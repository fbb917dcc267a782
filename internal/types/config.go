// SPDX-License-Identifier: AGPL-3.0-or-later
package types

// Config is the hb tool configuration read from hb.yaml.
type Config struct {
	RootPath        string `yaml:"root_path,omitempty"`
	OutPath         string `yaml:"out_path,omitempty"`
	OSLevel         string `yaml:"os_level,omitempty"`
	LogPath         string `yaml:"log_path,omitempty"`
	ArgsDir         string `yaml:"args_dir,omitempty"`
	PrebuiltsConfig string `yaml:"prebuilts_config,omitempty"`
	LogFormat       string `yaml:"log_format,omitempty"`
	DataDir         string `yaml:"data_dir,omitempty"`
	Python          string `yaml:"python,omitempty"`
	// Products maps product names to their config directory, used when the
	// set workflow prompts for a product.
	Products map[string]string `yaml:"products,omitempty"`
}

// IsConstrainedOS reports whether the target OS level needs GN to be told
// which interpreter runs its helper scripts.
func (c *Config) IsConstrainedOS() bool {
	if c == nil {
		return false
	}
	return c.OSLevel == "mini" || c.OSLevel == "small"
}
