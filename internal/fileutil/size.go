package fileutil

import (
	"fmt"
	"math"
	"os"

	"github.com/dustin/go-humanize"
)

// Size reports the size of path as "~<N> KB", N being bytes/1024 rounded
// half to even. Stat errors are returned unchanged.
func Size(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return FormatKB(info.Size()), nil
}

// FormatKB renders a byte count the way Size does.
func FormatKB(bytes int64) string {
	kb := math.RoundToEven(float64(bytes) / 1024)
	return fmt.Sprintf("~%d KB", int64(kb))
}

// HumanSize reports the size of path in IEC units (e.g. "1.5 MiB").
func HumanSize(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return humanize.IBytes(uint64(info.Size())), nil
}
