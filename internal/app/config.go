package app

import (
	"os"
	"strconv"

	"mechmania/server/internal/replay"
	"mechmania/server/internal/telemetry"
	"mechmania/server/logging"
)

// Config holds the server settings. Zero values fall back to DefaultConfig
// inside Run.
type Config struct {
	Addr    string
	Players int
	// TickRate is ticks per second.
	TickRate int
	// MapPath points at a map description. Empty uses the bundled board.
	MapPath string

	ReplayPath     string
	ReplayCodec    replay.Codec
	ReplayCompress bool

	LogSinks    []string
	LogJSONPath string

	CommandRate  float64
	CommandBurst int

	Logger telemetry.Logger
}

func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		Players:      2,
		TickRate:     2,
		ReplayCodec:  replay.CodecJSON,
		LogSinks:     []string{logging.SinkConsole},
		LogJSONPath:  "events.ndjson",
		CommandRate:  20,
		CommandBurst: 10,
	}
}

// ConfigFromEnv applies MM_* environment overrides to DefaultConfig.
// Invalid values are reported through logger and ignored.
func ConfigFromEnv(logger telemetry.Logger) Config {
	cfg := DefaultConfig()
	cfg.Logger = logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}

	if raw := os.Getenv("MM_ADDR"); raw != "" {
		cfg.Addr = raw
	}
	if raw := os.Getenv("MM_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.Players = value
		} else {
			logger.Printf("invalid MM_PLAYERS=%q", raw)
		}
	}
	if raw := os.Getenv("MM_TICK_RATE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TickRate = value
		} else {
			logger.Printf("invalid MM_TICK_RATE=%q", raw)
		}
	}
	if raw := os.Getenv("MM_MAP"); raw != "" {
		cfg.MapPath = raw
	}
	if raw := os.Getenv("MM_REPLAY_PATH"); raw != "" {
		cfg.ReplayPath = raw
	}
	if raw := os.Getenv("MM_REPLAY_CODEC"); raw != "" {
		if codec, err := replay.ParseCodec(raw); err == nil {
			cfg.ReplayCodec = codec
		} else {
			logger.Printf("invalid MM_REPLAY_CODEC=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("MM_REPLAY_COMPRESS"); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.ReplayCompress = value
		} else {
			logger.Printf("invalid MM_REPLAY_COMPRESS=%q: %v", raw, err)
		}
	}
	if raw := os.Getenv("MM_LOG_SINKS"); raw != "" {
		cfg.LogSinks = logging.ParseSinks(raw)
	}
	if raw := os.Getenv("MM_LOG_JSON_PATH"); raw != "" {
		cfg.LogJSONPath = raw
	}
	if raw := os.Getenv("MM_COMMAND_RATE"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil && value >= 0 {
			cfg.CommandRate = value
		} else {
			logger.Printf("invalid MM_COMMAND_RATE=%q", raw)
		}
	}
	return cfg
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.Players <= 0 {
		c.Players = def.Players
	}
	if c.TickRate <= 0 {
		c.TickRate = def.TickRate
	}
	if c.ReplayCodec == "" {
		c.ReplayCodec = def.ReplayCodec
	}
	if len(c.LogSinks) == 0 {
		c.LogSinks = def.LogSinks
	}
	if c.LogJSONPath == "" {
		c.LogJSONPath = def.LogJSONPath
	}
	if c.CommandBurst <= 0 {
		c.CommandBurst = def.CommandBurst
	}
	return c
}
