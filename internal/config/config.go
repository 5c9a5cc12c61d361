// Package config resolves run settings from defaults, an optional YAML file
// and COUNTLY_POSTPROCESSOR_* environment variables.
package config

import (
	"github.com/countly/xcode-postprocessor/pbxproj"
	"github.com/spf13/viper"
	"go.trai.ch/zerr"
)

const (
	// EnvPrefix is prepended to upper-cased keys, e.g. COUNTLY_POSTPROCESSOR_BACKUP.
	EnvPrefix = "COUNTLY_POSTPROCESSOR"

	fileType = "yaml"
)

// Keys understood in the config file and environment.
const (
	KeyDebug      = "debug"
	KeyBackup     = "backup"
	KeySaveFormat = "save_format"
	KeyWeak       = "weak"
	KeyTarget     = "target"
	KeyVerify     = "verify"
)

// Config is the resolved configuration of a run.
type Config struct {
	Debug      bool
	Backup     bool
	SaveFormat pbxproj.SaveFormat
	Weak       bool
	Target     string
	Verify     bool
}

// New returns a viper instance with defaults and environment lookup set up.
// Flags can be bound to it before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyBackup, true)
	v.SetDefault(KeySaveFormat, string(pbxproj.Format3_2))
	v.SetDefault(KeyWeak, false)
	v.SetDefault(KeyTarget, "")
	v.SetDefault(KeyVerify, true)

	v.SetConfigType(fileType)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads file when it is not empty and resolves the final settings.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", file)
		}
	}

	format, err := pbxproj.ParseSaveFormat(v.GetString(KeySaveFormat))
	if err != nil {
		return Config{}, zerr.Wrap(err, "invalid "+KeySaveFormat)
	}

	return Config{
		Debug:      v.GetBool(KeyDebug),
		Backup:     v.GetBool(KeyBackup),
		SaveFormat: format,
		Weak:       v.GetBool(KeyWeak),
		Target:     v.GetString(KeyTarget),
		Verify:     v.GetBool(KeyVerify),
	}, nil
}
