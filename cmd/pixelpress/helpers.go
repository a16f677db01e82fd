package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

func parseAssetID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid asset id %q", arg)
	}
	return id, nil
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
