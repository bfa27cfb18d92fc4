package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	defaultOddsAPIBaseURL = "https://api.odds-api.io/v3"
	defaultStream         = "static_files:generate"
	defaultConsumerGroup  = "static-file-workers"
)

var defaultMajorLeagues = []string{
	"England - Premier League",
	"Germany - Bundesliga",
	"Italy - Serie A",
	"France - Ligue 1",
	"Spain - LaLiga",
	"Netherlands - Eredivisie",
	"Portugal - Liga Portugal",
	"Brazil - Brasileiro Serie A",
	"International Clubs - UEFA Champions League",
	"International Clubs - UEFA Europa League",
	"International Clubs - UEFA Conference League",
}

type Config struct {
	DatabaseURL      string
	RedisURL         string
	TelegramBotToken string
	HTTPPort         int

	OddsAPIKey            string
	OddsAPIBaseURL        string
	OddsAPIRequestsPerMin int
	DefaultBookmakers     []string
	MajorLeagues          []string
	StaticFilesPath       string
	RetentionDaysEnded    int
	CacheTTLSports        int
	CacheTTLEvents        int
	CacheTTLUpcoming      int
	RegionsFile           string
	Regions               map[string][]string

	RateLimitEnabled bool
	RateLimitDefault int
	RateLimitHeavy   int
	RateLimitSearch  int
	CORSOrigins      []string
	APIKey           string
	APIKeyEnabled    bool
	AdminToken       string
	CleanDataToken   string

	StreamName        string
	ConsumerGroup     string
	WorkerConcurrency int
	JobTimeoutSecs    int
	RefreshSchedule   string
	UpcomingSchedule  string

	SSHPort           int
	SSHHostKeyPath    string
	SSHAuthorizedKeys []string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OddsAPIKey:       os.Getenv("ODDS_API_KEY"),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
		AdminToken:       strings.TrimSpace(os.Getenv("ADMIN_TOKEN")),
		CleanDataToken:   strings.TrimSpace(os.Getenv("CLEAN_DATA_TOKEN")),
		RegionsFile:      strings.TrimSpace(os.Getenv("REGIONS_FILE")),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.OddsAPIKey == "" {
		log.Println("Warning: ODDS_API_KEY not set, upstream calls will be rejected")
	}

	cfg.OddsAPIBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("ODDS_API_BASE_URL")), "/")
	if cfg.OddsAPIBaseURL == "" {
		cfg.OddsAPIBaseURL = defaultOddsAPIBaseURL
	}

	cfg.HTTPPort = envPositiveInt("HTTP_PORT", 8080)
	cfg.OddsAPIRequestsPerMin = envPositiveInt("ODDS_API_REQUESTS_PER_MIN", 120)

	cfg.DefaultBookmakers = envList("DEFAULT_BOOKMAKERS", []string{"betano", "sportingbet", "betfair", "bet365"})
	cfg.MajorLeagues = envList("MAJOR_LEAGUES", defaultMajorLeagues)

	cfg.StaticFilesPath = strings.TrimSpace(os.Getenv("STATIC_FILES_PATH"))
	if cfg.StaticFilesPath == "" {
		cfg.StaticFilesPath = "static"
	}

	cfg.RetentionDaysEnded = envPositiveInt("RETENTION_DAYS_ENDED", 7)
	cfg.CacheTTLSports = envPositiveInt("CACHE_TTL_SPORTS", 86400)
	cfg.CacheTTLEvents = envPositiveInt("CACHE_TTL_EVENTS", 300)
	cfg.CacheTTLUpcoming = envPositiveInt("CACHE_TTL_UPCOMING", 3600)

	cfg.RateLimitEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "false")
	cfg.RateLimitDefault = envPositiveInt("RATE_LIMIT_DEFAULT", 60)
	cfg.RateLimitHeavy = envPositiveInt("RATE_LIMIT_HEAVY", 10)
	cfg.RateLimitSearch = envPositiveInt("RATE_LIMIT_SEARCH", 30)

	cfg.CORSOrigins = envList("CORS_ORIGINS", []string{"*"})

	cfg.APIKeyEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("API_KEY_ENABLED")), "true")
	if cfg.AdminToken == "" {
		log.Println("Warning: ADMIN_TOKEN not set, admin endpoints are disabled")
	}

	cfg.StreamName = strings.TrimSpace(os.Getenv("JOB_STREAM"))
	if cfg.StreamName == "" {
		cfg.StreamName = defaultStream
	}
	cfg.ConsumerGroup = strings.TrimSpace(os.Getenv("JOB_CONSUMER_GROUP"))
	if cfg.ConsumerGroup == "" {
		cfg.ConsumerGroup = defaultConsumerGroup
	}
	cfg.WorkerConcurrency = envPositiveInt("WORKER_CONCURRENCY", 10)
	cfg.JobTimeoutSecs = envPositiveInt("JOB_TIMEOUT_SECS", 300)

	cfg.RefreshSchedule = strings.TrimSpace(os.Getenv("REFRESH_SCHEDULE"))
	if cfg.RefreshSchedule == "" {
		cfg.RefreshSchedule = "*/5 * * * *"
	}
	cfg.UpcomingSchedule = strings.TrimSpace(os.Getenv("UPCOMING_SCHEDULE"))
	if cfg.UpcomingSchedule == "" {
		cfg.UpcomingSchedule = "0 * * * *"
	}

	cfg.SSHPort = envPositiveInt("SSH_PORT", 2222)
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/nsn_odds_ed25519"
	}
	cfg.SSHAuthorizedKeys = envList("SSH_AUTHORIZED_KEYS", nil)

	cfg.Regions = DefaultRegions()
	if cfg.RegionsFile != "" {
		regions, err := LoadRegionsFile(cfg.RegionsFile)
		if err != nil {
			log.Printf("Warning: failed to load REGIONS_FILE %s, using built-in regions: %v", cfg.RegionsFile, err)
		} else {
			cfg.Regions = regions
		}
	}

	return cfg
}

func envPositiveInt(name string, def int) int {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using %d", name, v, def)
	}
	return def
}

// envList splits a comma separated variable, dropping blanks.
func envList(name string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
