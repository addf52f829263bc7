package assembler

import (
	"os"
	"strings"
)

// ReadSourceLines reads path and splits it on line-feed, per spec.md §6.4:
// trailing '\r' is not stripped, and no other normalization is applied.
func ReadSourceLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\n"), nil
}
