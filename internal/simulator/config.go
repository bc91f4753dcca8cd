package simulator

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     string
	Interval time.Duration
	// AnomalyEvery каждое N-е событие заменяется аномалией (0 - никогда)
	AnomalyEvery int
	// MalformedEvery каждое N-е сообщение намеренно повреждено (0 - никогда)
	MalformedEvery int
	Seed           int64
}

func LoadConfigFromEnv() (Config, error) {
	interval, err := time.ParseDuration(getEnv("SIMULATOR_INTERVAL", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SIMULATOR_INTERVAL: %w", err)
	}

	if interval < 10*time.Millisecond {
		return Config{}, errors.New("SIMULATOR_INTERVAL must be >= 10ms")
	}

	anomalyEvery, err := strconv.Atoi(getEnv("SIMULATOR_ANOMALY_EVERY", "30"))
	if err != nil || anomalyEvery < 0 {
		return Config{}, fmt.Errorf("invalid SIMULATOR_ANOMALY_EVERY: %q", os.Getenv("SIMULATOR_ANOMALY_EVERY"))
	}

	malformedEvery, err := strconv.Atoi(getEnv("SIMULATOR_MALFORMED_EVERY", "0"))
	if err != nil || malformedEvery < 0 {
		return Config{}, fmt.Errorf("invalid SIMULATOR_MALFORMED_EVERY: %q", os.Getenv("SIMULATOR_MALFORMED_EVERY"))
	}

	seed, err := strconv.ParseInt(getEnv("SIMULATOR_SEED", "0"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SIMULATOR_SEED: %w", err)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return Config{
		Port:           getEnv("SIMULATOR_PORT", "8090"),
		Interval:       interval,
		AnomalyEvery:   anomalyEvery,
		MalformedEvery: malformedEvery,
		Seed:           seed,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
