package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort     string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL  string `env:"DATABASE_URL"`
	StorePath    string `env:"STORE_PATH" envDefault:"chat-sessions.json"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY,required"`
	LLMBaseURL   string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel     string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	// HistoryLimit acota cuantos mensajes viajan al proveedor; 0 = sin tope.
	HistoryLimit int `env:"HISTORY_LIMIT" envDefault:"0"`
	// TurnTimeoutSeconds limita un turno completo; 0 = sin deadline.
	TurnTimeoutSeconds int `env:"TURN_TIMEOUT_SECONDS" envDefault:"0"`

	RedisAddr             string `env:"REDIS_ADDR"`
	RedisPassword         string `env:"REDIS_PASSWORD"`
	RedisDB               int    `env:"REDIS_DB" envDefault:"0"`
	ChatRateWindowSeconds int    `env:"CHAT_RATE_WINDOW_SECONDS" envDefault:"60"`
	ChatRateMax           int    `env:"CHAT_RATE_MAX" envDefault:"20"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
