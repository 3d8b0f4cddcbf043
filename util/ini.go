package util

import (
	"gopkg.in/ini.v1"
)

// Ini loads a key-value config file from the config directory.
func Ini(ininame string) (map[string]string, error) {
	cfg, err := ini.Load("config/" + ininame)
	if err != nil {
		return nil, err
	}
	return cfg.Section("").KeysHash(), nil
}
