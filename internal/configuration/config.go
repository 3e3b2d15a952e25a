package configuration

import (
	"encoding/json"
	"os"
)

type ServerConfig struct {
	AppPort     int    `json:"app_port"`
	SocketPort  int    `json:"socket_port"`
	SocketRoute string `json:"socket_route"`
}

type MongoConfig struct {
	Uri                string `json:"uri"`
	Database           string `json:"database"`
	UsersCollection    string `json:"usersCollection"`
	ChatsCollection    string `json:"chatsCollection"`
	MessagesCollection string `json:"messagesCollection"`
}

type AuthConfig struct {
	JwtSecret     string `json:"jwt_secret"`
	TokenTTLHours int    `json:"token_ttl_hours"`
	SecureCookies bool   `json:"secure_cookies"`
}

type CorsConfig struct {
	// AllowedOrigins governs both REST CORS and the websocket origin
	// check. "*" allows everything; a request with no Origin header is
	// always accepted.
	AllowedOrigins []string `json:"allowed_origins"`
}

type Config struct {
	Server   ServerConfig `json:"server"`
	Database MongoConfig  `json:"mongo"`
	Auth     AuthConfig   `json:"auth"`
	Cors     CorsConfig   `json:"cors"`
}

// LoadConfig reads the JSON config file. The JWT secret may be
// supplied or overridden through the JWT_SECRET environment variable,
// which takes precedence over the file.
func LoadConfig(configPath string) (*Config, error) {
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JwtSecret = secret
	}
	if config.Server.SocketRoute == "" {
		config.Server.SocketRoute = "socket"
	}
	if config.Auth.TokenTTLHours <= 0 {
		config.Auth.TokenTTLHours = 48
	}

	return &config, nil
}
