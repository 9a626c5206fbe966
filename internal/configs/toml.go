package configs

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// SaveTOML saves a struct to a TOML file.
func SaveTOML(filePath string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	return toml.NewEncoder(file).Encode(data)
}

// LoadTOML loads a TOML file into a struct. Unknown keys are rejected.
func LoadTOML(filePath string, data interface{}) error {
	meta, err := toml.DecodeFile(filePath, data)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return &UnknownKeysError{Keys: undecoded}
	}
	return nil
}

// UnknownKeysError lists TOML keys that do not map to a config field.
type UnknownKeysError struct {
	Keys []toml.Key
}

func (e *UnknownKeysError) Error() string {
	msg := "unknown keys:"
	for _, k := range e.Keys {
		msg += " " + k.String()
	}
	return msg
}
