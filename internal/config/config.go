package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/benbeisheim/checkers-backend/internal/engine"
)

type Config struct {
	ListenAddr   string
	AllowOrigins string

	// Defaults for new games; a create request may override both.
	SearchDepth int
	Algorithm   engine.Algorithm

	// ForcedCapture makes captures mandatory across the whole board and
	// requires capture chains to be completed.
	ForcedCapture bool

	// AITurnTimeout bounds one AI turn; zero disables the limit.
	AITurnTimeout time.Duration
	// AITickInterval is how often the worker polls for pending AI turns.
	AITickInterval time.Duration

	LogKeys []string
}

func Default() Config {
	return Config{
		ListenAddr:     ":3000",
		AllowOrigins:   "http://localhost:5173",
		SearchDepth:    5,
		Algorithm:      engine.AlphaBeta,
		ForcedCapture:  false,
		AITurnTimeout:  30 * time.Second,
		AITickInterval: 100 * time.Millisecond,
		LogKeys:        []string{"GAME", "SERVICE", "AI", "HTTP", "WS"},
	}
}

// Parse reads command line flags over the defaults.
func Parse(args []string) (Config, error) {
	cfg := Default()
	fs := flag.NewFlagSet("checkers-server", flag.ContinueOnError)

	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "Address the HTTP server listens on")
	fs.StringVar(&cfg.AllowOrigins, "origins", cfg.AllowOrigins, "Comma separated origins allowed by CORS and websocket upgrades")
	fs.IntVar(&cfg.SearchDepth, "depth", cfg.SearchDepth, "Default AI search depth in plies")
	algorithm := fs.String("algorithm", string(cfg.Algorithm), "Default AI search: minimax | alphabeta")
	fs.BoolVar(&cfg.ForcedCapture, "forced-capture", cfg.ForcedCapture, "Make captures mandatory anywhere on the board")
	fs.DurationVar(&cfg.AITurnTimeout, "ai-timeout", cfg.AITurnTimeout, "Time limit for one AI turn, 0 for none")
	fs.DurationVar(&cfg.AITickInterval, "ai-tick", cfg.AITickInterval, "Polling interval of the AI turn worker")
	logKeys := fs.String("log-keys", strings.Join(cfg.LogKeys, ","), "Comma separated log keys to enable")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	algo, err := engine.ParseAlgorithm(*algorithm)
	if err != nil {
		return Config{}, err
	}
	cfg.Algorithm = algo
	cfg.LogKeys = splitList(*logKeys)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address is required")
	}
	if err := engine.ValidateDepth(c.SearchDepth); err != nil {
		return err
	}
	if _, err := engine.ParseAlgorithm(string(c.Algorithm)); err != nil {
		return err
	}
	if c.AITurnTimeout < 0 {
		return fmt.Errorf("negative AI timeout %v", c.AITurnTimeout)
	}
	if c.AITickInterval <= 0 {
		return fmt.Errorf("AI tick interval must be positive, got %v", c.AITickInterval)
	}
	return nil
}

// Origins returns AllowOrigins as a list.
func (c Config) Origins() []string {
	return splitList(c.AllowOrigins)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
