package consts

import (
	"os"
	"path/filepath"
)

const (
	YumeDirName    = ".yume"
	ConfigFileName = "config.yaml"
	DataDirName    = "data"
)

func YumeHomeDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, YumeDirName)
}

func DefaultConfigPath() string {
	return filepath.Join(YumeHomeDir(), ConfigFileName)
}

func DefaultDataDir() string {
	return filepath.Join(YumeHomeDir(), DataDirName)
}
