package config

type Bot struct {
	Token   string `env:"BOT_TOKEN" json:"-"`
	ChatID  int64  `env:"BOT_CHAT_ID"`
	AdminID int64  `env:"BOT_ADMIN_ID"`
}

// Enabled reports whether the Telegram surfaces should start.
func (b Bot) Enabled() bool {
	return b.Token != ""
}

// NotifyChat falls back to the admin's private chat.
func (b Bot) NotifyChat() int64 {
	if b.ChatID != 0 {
		return b.ChatID
	}
	return b.AdminID
}

type Redis struct {
	Address  string `env:"REDIS_ADDRESS"`
	Username string `env:"REDIS_USERNAME"`
	Password string `env:"REDIS_PASSWORD" json:"-"`
	DB       int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	Channel  string `env:"REDIS_CHANNEL" envDefault:"trade_pilot:events"`
}

func (r Redis) Enabled() bool {
	return r.Address != ""
}

type HTTP struct {
	ControlAddress string `env:"HTTP_CONTROL_ADDRESS" envDefault:"127.0.0.1:8080"`
	MetricsAddress string `env:"HTTP_METRICS_ADDRESS"`
	ProbeAddress   string `env:"HTTP_PROBE_ADDRESS"`
}
