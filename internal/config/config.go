package config

import (
	"fmt"
)

type Config struct {
	DatabaseDSN    string
	ServerAddr     string
	AllowedOrigins []string
}

func NewConfig(serverAddr, databaseDSN string, allowedOrigins []string) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}

	return &Config{
		DatabaseDSN:    databaseDSN,
		ServerAddr:     serverAddr,
		AllowedOrigins: allowedOrigins,
	}, nil
}
