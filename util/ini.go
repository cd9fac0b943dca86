package util

import (
	"os"

	"gopkg.in/ini.v1"
)

// Ini loads a config file from the config directory and returns its
// default section as a map. A missing file is not an error, the map is
// just empty then.
func Ini(ininame string) (map[string]string, error) {
	if _, err := os.Stat("config/" + ininame); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	cfg, err := ini.Load("config/" + ininame)
	if err != nil {
		return nil, err
	}
	return cfg.Section("").KeysHash(), nil
}
