package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/game"
	"github.com/arcade-cabinet/beppo-laughs/geometry"
	"github.com/joho/godotenv"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP   string // Host IP for the server
	RESTPort int    // Port for the REST API
	GinMode  string // Mode for the Gin framework (e.g., release, debug, test)

	JWTSecret string        // Secret key for JWT signing
	JWTIssuer string        // Issuer claim for JWTs
	TokenTTL  time.Duration // Lifetime of a session token

	RedisAddr      string        // Address of the redis layout cache; empty keeps layouts in memory
	RedisPassword  string        // Password for redis
	RedisDB        int           // Redis database index
	LayoutCacheTTL time.Duration // How long a generated level stays cached

	DBHost      string // Hostname or IP address for the catalog database; empty disables it
	DBPort      int    // Port number for the database
	DBUser      string // Username for the database
	DBPassword  string // Password for the database
	DBName      string // Name of the database
	CatalogPath string // Path of an asset-catalog.json used when the database is disabled

	TickRate    int           // Session simulation ticks per second
	IdleTimeout time.Duration // Sessions without input for this long are stopped
	MaxSessions int           // Upper bound of concurrently running sessions

	MazeWidth  int // Default maze width
	MazeHeight int // Default maze height
	MaxSanity  float64

	Geometry geometry.Config
	Tuning   game.Tuning
}

// Envs holds the configuration loaded by Load.
var Envs Config

// Load reads the configuration from the environment, after loading a .env file
// when one is present, and stores it in Envs.
func Load() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	tuning := game.DefaultTuning()
	tuning.MaxSpeed = getEnvAsFloat("NAV_MAX_SPEED", tuning.MaxSpeed)
	tuning.Acceleration = getEnvAsFloat("NAV_ACCELERATION", tuning.Acceleration)
	tuning.Braking = getEnvAsFloat("NAV_BRAKING", tuning.Braking)
	tuning.Drag = getEnvAsFloat("NAV_DRAG", tuning.Drag)
	tuning.MoveEpsilon = getEnvAsFloat("NAV_MOVE_EPSILON", tuning.MoveEpsilon)
	tuning.TurnRate = getEnvAsFloat("NAV_TURN_RATE", tuning.TurnRate)
	tuning.StraightWeight = getEnvAsFloat("NAV_STRAIGHT_WEIGHT", tuning.StraightWeight)
	tuning.SteerWeight = getEnvAsFloat("NAV_STEER_WEIGHT", tuning.SteerWeight)
	tuning.ConfusionThreshold = getEnvAsFloat("NAV_CONFUSION_THRESHOLD", tuning.ConfusionThreshold)
	tuning.ConfusionSlope = getEnvAsFloat("NAV_CONFUSION_SLOPE", tuning.ConfusionSlope)
	tuning.ConfusionCeiling = getEnvAsFloat("NAV_CONFUSION_CEILING", tuning.ConfusionCeiling)
	mode, err := game.ParseForkMode(getEnvWithDefault("NAV_FORK_MODE", tuning.ForkMode.String()))
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable NAV_FORK_MODE: %v", err)
	}
	tuning.ForkMode = mode

	Envs = Config{
		HostIP:   getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort: getEnvAsInt("REST_PORT", 8080),
		GinMode:  getEnvWithDefault("GIN_MODE", "release"),

		JWTSecret: mustGetEnv("JWT_SECRET"),
		JWTIssuer: getEnvWithDefault("JWT_ISSUER", "beppo-laughs"),
		TokenTTL:  getEnvAsDuration("JWT_TTL", 2*time.Hour),

		RedisAddr:      getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword:  getEnvWithDefault("REDIS_PASS", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		LayoutCacheTTL: getEnvAsDuration("LAYOUT_CACHE_TTL", time.Hour),

		DBHost:      getEnvWithDefault("DB_HOST", ""),
		DBPort:      getEnvAsInt("DB_PORT", 27017),
		DBUser:      getEnvWithDefault("DB_USER", ""),
		DBPassword:  getEnvWithDefault("DB_PASS", ""),
		DBName:      getEnvWithDefault("DB_NAME", "beppo"),
		CatalogPath: getEnvWithDefault("CATALOG_PATH", ""),

		TickRate:    getEnvAsInt("TICK_RATE", 30),
		IdleTimeout: getEnvAsDuration("SESSION_IDLE_TIMEOUT", 10*time.Minute),
		MaxSessions: getEnvAsInt("MAX_SESSIONS", 256),

		MazeWidth:  getEnvAsInt("MAZE_WIDTH", 21),
		MazeHeight: getEnvAsInt("MAZE_HEIGHT", 21),
		MaxSanity:  getEnvAsFloat("MAX_SANITY", 100),

		Geometry: geometry.Config{
			CellSize:      getEnvAsFloat("CELL_SIZE", geometry.DefaultConfig.CellSize),
			WallHeight:    getEnvAsFloat("WALL_HEIGHT", geometry.DefaultConfig.WallHeight),
			WallThickness: getEnvAsFloat("WALL_THICKNESS", geometry.DefaultConfig.WallThickness),
		},
		Tuning: tuning,
	}
	return Envs
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an integer environment variable, or logs a fatal error if it cannot be parsed.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a number: %v", key, err)
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be a duration: %v", key, err)
	}
	return value
}
