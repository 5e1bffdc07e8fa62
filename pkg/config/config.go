package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers.
const (
	StorageFlatFile = "flatfile"
	StoragePostgres = "postgres"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Auth     AuthConfig
	LLM      LLMConfig
	Chat     ChatConfig
	CORS     CORSConfig
	Log      LogConfig
}

// StorageConfig locates the flat files backing the record store.
type StorageConfig struct {
	Driver            string
	DataDir           string
	KnowledgeBaseFile string
	UsersFile         string
	StudentsFile      string
	ConversationsFile string
}

// KnowledgeBasePath returns the knowledge base location resolved against the data dir.
func (s StorageConfig) KnowledgeBasePath() string {
	return s.resolve(s.KnowledgeBaseFile)
}

func (s StorageConfig) resolve(name string) string {
	if filepath.IsAbs(name) || s.DataDir == "" {
		return name
	}
	return filepath.Join(s.DataDir, name)
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig controls the chat session store and cookie.
type SessionConfig struct {
	Store      string
	TTL        time.Duration
	Secret     string
	CookieName string
	KeyPrefix  string
	Secure     bool
}

// AuthConfig selects the password hashing scheme.
type AuthConfig struct {
	PasswordScheme string
}

// LLMConfig holds the model provider credentials. It is passed explicitly to the chat service.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ChatConfig bounds the rolling history and log listings.
type ChatConfig struct {
	MaxHistory            int
	KeepRecent            int
	ConversationListLimit int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Storage = StorageConfig{
		Driver:            strings.ToLower(v.GetString("STORAGE_DRIVER")),
		DataDir:           v.GetString("DATA_DIR"),
		KnowledgeBaseFile: v.GetString("KNOWLEDGE_BASE_FILE"),
		UsersFile:         v.GetString("USERS_FILE"),
		StudentsFile:      v.GetString("STUDENTS_FILE"),
		ConversationsFile: v.GetString("CONVERSATIONS_FILE"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		Store:      strings.ToLower(v.GetString("SESSION_STORE")),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		Secret:     v.GetString("SESSION_SECRET"),
		CookieName: v.GetString("SESSION_COOKIE"),
		KeyPrefix:  v.GetString("SESSION_KEY_PREFIX"),
		Secure:     v.GetBool("SESSION_COOKIE_SECURE"),
	}

	cfg.Auth = AuthConfig{PasswordScheme: strings.ToLower(v.GetString("PASSWORD_SCHEME"))}

	cfg.LLM = LLMConfig{
		APIKey:  v.GetString("LLM_API_KEY"),
		BaseURL: v.GetString("LLM_BASE_URL"),
		Model:   v.GetString("LLM_MODEL"),
		Timeout: parseDuration(v.GetString("LLM_TIMEOUT"), 60*time.Second),
	}

	cfg.Chat = ChatConfig{
		MaxHistory:            v.GetInt("CHAT_MAX_HISTORY"),
		KeepRecent:            v.GetInt("CHAT_KEEP_RECENT"),
		ConversationListLimit: v.GetInt("CONVERSATION_LIST_LIMIT"),
	}
	if cfg.Chat.KeepRecent >= cfg.Chat.MaxHistory {
		cfg.Chat.KeepRecent = cfg.Chat.MaxHistory - 1
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORAGE_DRIVER", StorageFlatFile)
	v.SetDefault("DATA_DIR", ".")
	v.SetDefault("KNOWLEDGE_BASE_FILE", "banco_dados.txt")
	v.SetDefault("USERS_FILE", "usuarios.txt")
	v.SetDefault("STUDENTS_FILE", "dados_alunos.txt")
	v.SetDefault("CONVERSATIONS_FILE", "historico_conversas.txt")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "unihelp")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_COOKIE", "unihelp_session")
	v.SetDefault("SESSION_KEY_PREFIX", "unihelp:session:")
	v.SetDefault("SESSION_COOKIE_SECURE", false)

	v.SetDefault("PASSWORD_SCHEME", "sha256")

	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("LLM_MODEL", "gemini-2.5-flash")
	v.SetDefault("LLM_TIMEOUT", "60s")

	v.SetDefault("CHAT_MAX_HISTORY", 9)
	v.SetDefault("CHAT_KEEP_RECENT", 8)
	v.SetDefault("CONVERSATION_LIST_LIMIT", 50)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
