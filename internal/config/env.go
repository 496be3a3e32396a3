package config

import (
	"os"
	"strconv"
	"strings"
)

// Env returns the value of EnvPrefix+key, or fallback when unset.
func Env(key, fallback string) string {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return fallback
	}
	return v
}

func EnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(Env(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func EnvBool(key string, fallback bool) bool {
	v := Env(key, "")
	if v == "" {
		return fallback
	}
	return v == "1" || strings.ToLower(v) == "true"
}
