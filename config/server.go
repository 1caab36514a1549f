package config

// ServerConfig holds the dashboard API listen address.
type ServerConfig struct {
	Address string `json:"address"`
}

// SetDefaults applies the default listen address.
func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8000"
	}
}
