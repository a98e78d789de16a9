package bootstrap

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/cuongbtq/petstore/internal/config"
)

// LoadConfig loads .env, then the YAML file named by -config, falling back to
// the envVar environment variable and then defaultPath.
func LoadConfig(envVar, defaultPath string) (*config.Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	path := os.Getenv(envVar)
	if path == "" {
		path = defaultPath
	}
	configPath := flag.String("config", path, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
