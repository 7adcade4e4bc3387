package config

import "os"

// readFile is split out from Load so tests can substitute it if ever
// needed; today it is just os.ReadFile.
func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
