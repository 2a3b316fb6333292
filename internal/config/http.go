package config

// HTTP configures the terminal-facing API server.
type HTTP struct {
	Port            int    `env:"HTTP_PORT" envDefault:"3000"`
	BodyLimit       int    `env:"HTTP_BODY_LIMIT" envDefault:"1048576"`
	ShutdownTimeout string `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Auth configures terminal authentication.
type Auth struct {
	// TokenTTLHours is the lifetime of an issued terminal token.
	TokenTTLHours int `env:"AUTH_TOKEN_TTL_HOURS" envDefault:"24"`
}
