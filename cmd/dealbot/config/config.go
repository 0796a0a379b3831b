package config

import "time"

// Config holds application configuration.
type Config struct {
	CatalogAPIKey string        `env:"ITAD_API_KEY"`
	CatalogURL    string        `env:"CATALOG_URL" envDefault:"https://api.isthereanydeal.com"`
	StorefrontURL string        `env:"STOREFRONT_URL" envDefault:"https://store.steampowered.com"`
	Country       string        `env:"COUNTRY" envDefault:"JP"`
	Timezone      string        `env:"TIMEZONE" envDefault:"Asia/Tokyo"`
	MinReviews    int           `env:"MIN_REVIEWS" envDefault:"10"`
	PageLimit     int           `env:"PAGE_LIMIT" envDefault:"200"`
	ChunkSize     int           `env:"CHUNK_SIZE" envDefault:"200"`
	ReviewWorkers int           `env:"REVIEW_WORKERS" envDefault:"2"`
	UnitCapacity  int           `env:"UNIT_CAPACITY" envDefault:"100"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`

	// Sink selects where the digest goes: "stdout", "x" or "telegram".
	Sink string `env:"SINK" envDefault:"stdout"`

	Throttle Throttle
	X        X
	Telegram Telegram
}

// Throttle holds per-endpoint minimum call intervals.
type Throttle struct {
	CatalogDeals  time.Duration `env:"CATALOG_DEALS_INTERVAL" envDefault:"1s"`
	CatalogLookup time.Duration `env:"CATALOG_LOOKUP_INTERVAL" envDefault:"1s"`
	StoreDetails  time.Duration `env:"STORE_DETAILS_INTERVAL" envDefault:"1500ms"`
	StoreReviews  time.Duration `env:"STORE_REVIEWS_INTERVAL" envDefault:"1s"`
}

// X holds the X (Twitter) OAuth2 confidential client configuration.
type X struct {
	ClientID     string `env:"X_CLIENT_ID"`
	ClientSecret string `env:"X_CLIENT_SECRET"`
	RedirectURI  string `env:"X_REDIRECT_URI"`
	RefreshToken string `env:"X_REFRESH_TOKEN"`
	TokenFile    string `env:"TOKEN_FILE" envDefault:"x_tokens.json"`
	RotationFile string `env:"GHA_NEW_RT_PATH"`
}

// Telegram holds the Telegram sink configuration.
type Telegram struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `env:"TELEGRAM_CHAT_ID"`
}
