package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port                          string `mapstructure:"PORT"`
	StoreBackend                  string `mapstructure:"STORE_BACKEND"`
	DatabasePath                  string `mapstructure:"DATABASE_PATH"`
	BadgerPath                    string `mapstructure:"BADGER_PATH"`
	JWTSecret                     string `mapstructure:"JWT_SECRET"`
	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("STORE_BACKEND", "sqlite")
	viper.SetDefault("DATABASE_PATH", "inscriptions.db")
	viper.SetDefault("BADGER_PATH", "inscriptions.badger")
	viper.SetDefault("JWT_SECRET", "change-me")

	viper.BindEnv("STORE_BACKEND")
	viper.BindEnv("DATABASE_PATH")
	viper.BindEnv("BADGER_PATH")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
