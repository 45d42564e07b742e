package main

import (
	"os"
	"strconv"
)

type Config struct {
	Port      int
	AdminPort int
	DBPath    string
}

func LoadConfig() *Config {
	cfg := &Config{
		Port:      2323,
		AdminPort: 0,
	}
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			cfg.Port = p
		}
	}
	if portStr := os.Getenv("ADMIN_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			cfg.AdminPort = p
		}
	}
	cfg.DBPath = os.Getenv("DB_PATH")
	return cfg
}
