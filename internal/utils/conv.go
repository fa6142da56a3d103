package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns fallback if it is not a number
func StringToInt(s string, fallback int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return i
}
