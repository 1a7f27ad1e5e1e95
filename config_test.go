package main

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{"20:00", 20, 0, false},
		{"00:00", 0, 0, false},
		{"23:59", 23, 59, false},
		{"9:05", 9, 5, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"-1:30", 0, 0, true},
		{"noon", 0, 0, true},
		{"12", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			hour, minute, err := parseClock(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseClock(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && (hour != tt.hour || minute != tt.minute) {
				t.Fatalf("parseClock(%q) = %d:%02d, want %d:%02d", tt.input, hour, minute, tt.hour, tt.minute)
			}
		})
	}
}

func TestRevealOpen(t *testing.T) {
	cfg := &Config{revealAt: "19:45"}

	day := func(hour, minute int) time.Time {
		return time.Date(2026, time.March, 14, hour, minute, 0, 0, time.UTC)
	}

	if cfg.revealOpen(day(19, 44)) {
		t.Fatal("window open one minute early")
	}
	if !cfg.revealOpen(day(19, 45)) {
		t.Fatal("window closed at the gate itself")
	}
	if !cfg.revealOpen(day(23, 59)) {
		t.Fatal("window closed late in the evening")
	}
	if cfg.revealOpen(day(0, 0)) {
		t.Fatal("window open just after midnight")
	}

	// An unparseable gate fails open rather than hiding the count all day.
	broken := &Config{revealAt: "whenever"}
	if !broken.revealOpen(day(3, 0)) {
		t.Fatal("broken gate should fail open")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			port:         8080,
			ghostMin:     100,
			ghostMax:     200,
			roundSeconds: 15,
			startTime:    "20:00",
			revealAt:     "19:45",
		}
	}

	if err := valid().validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }},
		{"port zero", func(c *Config) { c.port = 0 }},
		{"port too high", func(c *Config) { c.port = 65536 }},
		{"negative ghost floor", func(c *Config) { c.ghostMin = -1 }},
		{"inverted ghost range", func(c *Config) { c.ghostMin = 300 }},
		{"zero round length", func(c *Config) { c.roundSeconds = 0 }},
		{"bad start time", func(c *Config) { c.startTime = "25:00" }},
		{"bad reveal time", func(c *Config) { c.revealAt = "19" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestScheme(t *testing.T) {
	cfg := &Config{}
	if cfg.scheme() != "http" {
		t.Fatalf("scheme = %s", cfg.scheme())
	}
	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	if cfg.scheme() != "https" {
		t.Fatalf("scheme = %s", cfg.scheme())
	}
}
