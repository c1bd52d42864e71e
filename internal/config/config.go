package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation and parse failure.
var ErrInvalidConfig = errors.New("invalid config")

// Generator names accepted by MazeConfig.Generator.
const (
	GeneratorRandom = "random"
	GeneratorWilson = "wilson"
	GeneratorOpen   = "open"
)

// Config aggregates application configuration values.
type Config struct {
	Maze    MazeConfig    `yaml:",inline"`
	Display DisplayConfig `yaml:",inline"`
	Logging LoggingConfig `yaml:"logging"`
	HTTP    HTTPConfig    `yaml:"http"`
	Workers int           `yaml:"workers"`
}

// Point is a board coordinate or size.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// MazeConfig describes the board to generate.
type MazeConfig struct {
	BoardSize  Point   `yaml:"boardSize"`
	StartPos   Point   `yaml:"startPos"`
	EndPos     *Point  `yaml:"endPos"` // nil selects the bottom-right cell
	CreateMaze bool    `yaml:"createMaze"`
	Generator  string  `yaml:"generator"`
	WallChance float64 `yaml:"wallChance"`
	Seed       int64   `yaml:"seed"` // 0 picks a time-based seed
}

// End resolves the end position.
func (m MazeConfig) End() Point {
	if m.EndPos != nil {
		return *m.EndPos
	}
	return Point{X: m.BoardSize.X - 1, Y: m.BoardSize.Y - 1}
}

// DisplayConfig holds animation speeds in milliseconds and the board symbols.
type DisplayConfig struct {
	NeighborSpeed     int    `yaml:"neighborSpeed"`
	SearchedNodeSpeed int    `yaml:"searchedNodeSpeed"`
	RetraceSpeed      int    `yaml:"retraceSpeed"`
	Walkable          string `yaml:"walkable"`
	Wall              string `yaml:"wall"`
	SearchingNode     string `yaml:"searchingNode"`
	Neighbors         string `yaml:"neighbors"`
	PathBack          string `yaml:"pathBack"`
	StartPosString    string `yaml:"startPosString"`
	EndPosString      string `yaml:"endPosString"`
}

func (d DisplayConfig) NeighborDelay() time.Duration {
	return time.Duration(d.NeighborSpeed) * time.Millisecond
}

func (d DisplayConfig) SearchedNodeDelay() time.Duration {
	return time.Duration(d.SearchedNodeSpeed) * time.Millisecond
}

func (d DisplayConfig) RetraceDelay() time.Duration {
	return time.Duration(d.RetraceSpeed) * time.Millisecond
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"` // text|json
	IncludeCaller bool   `yaml:"includeCaller"`
}

// HTTPConfig governs the visualiser server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxSessions     int           `yaml:"maxSessions"`
}

const (
	defaultBoardSize       = 50
	defaultWallChance      = 0.3
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "text"
	defaultHTTPAddr        = ":8080"
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxSessions     = 64
)

// Default returns the demo board: 50x50 with a fixed start and end.
func Default() Config {
	return Config{
		Maze: MazeConfig{
			BoardSize:  Point{X: defaultBoardSize, Y: defaultBoardSize},
			StartPos:   Point{X: 11, Y: 3},
			EndPos:     &Point{X: 47, Y: 32},
			CreateMaze: true,
			Generator:  GeneratorRandom,
			WallChance: defaultWallChance,
		},
		Display: DisplayConfig{
			Walkable:       "⚫",
			Wall:           "🟫",
			SearchingNode:  "🟨",
			Neighbors:      "🟦",
			PathBack:       "⚪",
			StartPosString: "🔴",
			EndPosString:   "🟢",
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
		HTTP: HTTPConfig{
			Addr:            defaultHTTPAddr,
			ShutdownTimeout: defaultShutdownTimeout,
			MaxSessions:     defaultMaxSessions,
		},
		Workers: runtime.NumCPU(),
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then .env files, then ASTAR_* environment variables.
// Missing .env files are ignored. The result is validated.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		// A file describes its own board: startPos defaults to the origin
		// and endPos to the bottom-right cell.
		cfg.Maze.StartPos = Point{}
		cfg.Maze.EndPos = nil
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parsing %s: %w", ErrInvalidConfig, path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if !cfg.Maze.CreateMaze {
		cfg.Maze.Generator = GeneratorOpen
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"ASTAR_BOARD_WIDTH", &cfg.Maze.BoardSize.X},
		{"ASTAR_BOARD_HEIGHT", &cfg.Maze.BoardSize.Y},
		{"ASTAR_START_X", &cfg.Maze.StartPos.X},
		{"ASTAR_START_Y", &cfg.Maze.StartPos.Y},
		{"ASTAR_NEIGHBOR_SPEED", &cfg.Display.NeighborSpeed},
		{"ASTAR_SEARCHED_NODE_SPEED", &cfg.Display.SearchedNodeSpeed},
		{"ASTAR_RETRACE_SPEED", &cfg.Display.RetraceSpeed},
		{"ASTAR_WORKERS", &cfg.Workers},
		{"ASTAR_MAX_SESSIONS", &cfg.HTTP.MaxSessions},
	}
	for _, v := range ints {
		if err := parseInt(v.key, v.dst); err != nil {
			return err
		}
	}

	_, hasX := os.LookupEnv("ASTAR_END_X")
	_, hasY := os.LookupEnv("ASTAR_END_Y")
	if hasX || hasY {
		end := cfg.Maze.End()
		if err := parseInt("ASTAR_END_X", &end.X); err != nil {
			return err
		}
		if err := parseInt("ASTAR_END_Y", &end.Y); err != nil {
			return err
		}
		cfg.Maze.EndPos = &end
	}

	cfg.Maze.Generator = valueOrDefault("ASTAR_GENERATOR", cfg.Maze.Generator)
	cfg.Logging.Level = valueOrDefault("ASTAR_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("ASTAR_LOG_FORMAT", cfg.Logging.Format)
	cfg.HTTP.Addr = valueOrDefault("ASTAR_HTTP_ADDR", cfg.HTTP.Addr)

	if v := os.Getenv("ASTAR_WALL_CHANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: ASTAR_WALL_CHANCE %q: %w", ErrInvalidConfig, v, err)
		}
		cfg.Maze.WallChance = f
	}
	if v := os.Getenv("ASTAR_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: ASTAR_SEED %q: %w", ErrInvalidConfig, v, err)
		}
		cfg.Maze.Seed = seed
	}
	if v := os.Getenv("ASTAR_CREATE_MAZE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: ASTAR_CREATE_MAZE %q: %w", ErrInvalidConfig, v, err)
		}
		cfg.Maze.CreateMaze = b
	}
	if v := os.Getenv("ASTAR_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: ASTAR_SHUTDOWN_TIMEOUT %q: %w", ErrInvalidConfig, v, err)
		}
		cfg.HTTP.ShutdownTimeout = d
	}
	return nil
}

// Validate checks that the configuration describes a searchable board.
func (c Config) Validate() error {
	m := c.Maze
	if m.BoardSize.X < 1 || m.BoardSize.Y < 1 {
		return fmt.Errorf("%w: boardSize %dx%d must be at least 1x1", ErrInvalidConfig, m.BoardSize.X, m.BoardSize.Y)
	}
	if !m.inBounds(m.StartPos) {
		return fmt.Errorf("%w: startPos (%d,%d) is outside the board", ErrInvalidConfig, m.StartPos.X, m.StartPos.Y)
	}
	if end := m.End(); !m.inBounds(end) {
		return fmt.Errorf("%w: endPos (%d,%d) is outside the board", ErrInvalidConfig, end.X, end.Y)
	}
	if m.WallChance < 0 || m.WallChance > 1 {
		return fmt.Errorf("%w: wallChance %v must be within [0,1]", ErrInvalidConfig, m.WallChance)
	}
	switch m.Generator {
	case GeneratorRandom, GeneratorWilson, GeneratorOpen:
	default:
		return fmt.Errorf("%w: unknown generator %q", ErrInvalidConfig, m.Generator)
	}
	d := c.Display
	if d.NeighborSpeed < 0 || d.SearchedNodeSpeed < 0 || d.RetraceSpeed < 0 {
		return fmt.Errorf("%w: speeds must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	}
	if c.HTTP.MaxSessions < 1 {
		return fmt.Errorf("%w: http.maxSessions must be at least 1", ErrInvalidConfig)
	}
	return nil
}

func (m MazeConfig) inBounds(p Point) bool {
	return p.X >= 0 && p.X < m.BoardSize.X && p.Y >= 0 && p.Y < m.BoardSize.Y
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s %q must be an integer: %w", ErrInvalidConfig, key, v, err)
	}
	*dst = n
	return nil
}
