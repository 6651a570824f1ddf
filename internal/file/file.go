package file

import "os"

// Exists returns a bool indicating if the specified file exists.
func Exists(filename string) bool {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return false
	}
	return true
}
