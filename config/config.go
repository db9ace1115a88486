package config

import (
	"log"
	"os"
)

type Config struct {
	ListenAddr    string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	MongoURI      string
	MongoDBName   string
	JWTSecret     string
	AvatarDir     string
	AvatarService string
}

func LoadConfig() *Config {
	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8000"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "driftchat"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   getEnv("MONGO_DB_NAME", "driftchat"),
		JWTSecret:     getEnv("JWT_SECRET", "secret"),
		AvatarDir:     getEnv("AVATAR_DIR", "public/avatars"),
		AvatarService: getEnv("AVATAR_SERVICE", "https://api.dicebear.com/7.x/identicon/svg?seed="),
	}
}

// getEnv reads an environment variable and returns its value or a default value
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
		log.Printf("Environment variable %s not set, using default value: %s", key, defaultValue)
	}
	return value
}
