// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

// Command blackjackvm serves the blackjack table as a remote framebuffer.
// Every connection gets its own program instance backed by the game engine.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/op/go-logging"
	"github.com/spf13/viper"

	blackjackvm "github.com/AaronLi/BlackjackVM"
	"github.com/AaronLi/BlackjackVM/backend"
	"github.com/AaronLi/BlackjackVM/render"
)

var log = logging.MustGetLogger("blackjackvm")

// InitConfig reads configuration from BJVM_ environment variables and the
// optional ./config.yaml. Environment variables take precedence.
func InitConfig() (*viper.Viper, error) {
	v := viper.New()

	v.AutomaticEnv()
	v.SetEnvPrefix("bjvm")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("listen", "localhost:9999")
	v.SetDefault("idle_timeout", blackjackvm.DefaultIdleTimeout)
	v.SetDefault("write_timeout", blackjackvm.DefaultWriteTimeout)
	v.SetDefault("canvas.width", blackjackvm.DefaultCanvasWidth)
	v.SetDefault("canvas.height", blackjackvm.DefaultCanvasHeight)
	v.SetDefault("backend.url", backend.DefaultBaseURL)
	v.SetDefault("backend.timeout", backend.DefaultTimeout)
	v.SetDefault("log.level", "INFO")

	v.SetConfigFile("./config.yaml")
	if err := v.ReadInConfig(); err != nil {
		fmt.Println("Configuration could not be read from config file. Using env variables instead")
	}

	for _, key := range []string{"idle_timeout", "write_timeout", "backend.timeout"} {
		if d := v.GetDuration(key); d <= 0 {
			return nil, fmt.Errorf("%s must be a positive duration, got %q", key, v.GetString(key))
		}
	}
	return v, nil
}

// PrintConfig logs the effective configuration.
func PrintConfig(v *viper.Viper) {
	log.Infof("action: config | result: success | listen: %s | idle_timeout: %v | canvas: %dx%d | backend_url: %s | log_level: %s",
		v.GetString("listen"),
		v.GetDuration("idle_timeout"),
		v.GetInt("canvas.width"),
		v.GetInt("canvas.height"),
		v.GetString("backend.url"),
		v.GetString("log.level"),
	)
}

func run(v *viper.Viper) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := backend.NewClient(v.GetString("backend.url"),
		backend.WithTimeout(v.GetDuration("backend.timeout")),
		backend.WithLogger(blackjackvm.NewLeveledLogger("backend")))
	if err != nil {
		return err
	}

	programConfig := render.Config{
		Auth:           engine,
		Engine:         engine,
		Logger:         blackjackvm.NewLeveledLogger("render"),
		Width:          v.GetInt("canvas.width"),
		Height:         v.GetInt("canvas.height"),
		RequestTimeout: v.GetDuration("backend.timeout"),
	}
	// Catch canvas and timeout mistakes before the first player connects.
	if _, err := render.NewProgram(ctx, programConfig); err != nil {
		return err
	}

	factory := func(id string) (blackjackvm.Application, error) {
		cfg := programConfig
		cfg.SessionID = id
		p, err := render.NewProgram(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	srv, err := blackjackvm.NewServer(factory,
		blackjackvm.WithServerLogger(blackjackvm.NewLeveledLogger("server")),
		blackjackvm.WithIdleTimeout(v.GetDuration("idle_timeout")),
		blackjackvm.WithFrameWriteTimeout(v.GetDuration("write_timeout")))
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", v.GetString("listen"))
	if err != nil {
		return err
	}
	log.Infof("action: listen | result: success | address: %s", ln.Addr())

	start := time.Now()
	if err := srv.Serve(ctx, ln); err != nil {
		return err
	}
	log.Infof("action: shutdown | result: success | uptime: %v", time.Since(start).Round(time.Second))
	return nil
}

func main() {
	v, err := InitConfig()
	if err != nil {
		log.Criticalf("%s", err)
		os.Exit(1)
	}

	if err := blackjackvm.InitLogging(v.GetString("log.level"), os.Stdout); err != nil {
		log.Criticalf("%s", err)
		os.Exit(1)
	}

	PrintConfig(v)

	if err := run(v); err != nil {
		log.Criticalf("action: serve | result: fail | error: %v", err)
		os.Exit(1)
	}
}
