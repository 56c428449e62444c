// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: AaronLi

// Command blackjackclient connects to a blackjackvm server and shows the
// table in the terminal. Press Esc or Ctrl-C to quit.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/op/go-logging"
	"github.com/spf13/viper"

	blackjackvm "github.com/AaronLi/BlackjackVM"
	"github.com/AaronLi/BlackjackVM/terminal"
)

var log = logging.MustGetLogger("blackjackclient")

// InitConfig reads configuration from BJCLIENT_ environment variables and
// the optional ./config.yaml. Environment variables take precedence.
func InitConfig() (*viper.Viper, error) {
	v := viper.New()

	v.AutomaticEnv()
	v.SetEnvPrefix("bjclient")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.address", "localhost:9999")
	v.SetDefault("server.dial_timeout", 5*time.Second)
	v.SetDefault("tick_rate", blackjackvm.DefaultTickRate)
	v.SetDefault("display.scale", blackjackvm.DefaultDisplayScale)
	v.SetDefault("input.write_timeout", blackjackvm.DefaultWriteTimeout)
	v.SetDefault("log.level", "INFO")
	// The terminal is the display, so logs go to a file or nowhere.
	v.SetDefault("log.file", "")

	v.SetConfigFile("./config.yaml")
	if err := v.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Configuration could not be read from config file. Using env variables instead")
	}

	if v.GetString("server.address") == "" {
		return nil, errors.New("server.address is required")
	}
	return v, nil
}

func logOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return io.Discard, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func run(v *viper.Viper) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	display, err := terminal.Open(
		terminal.WithScale(v.GetInt("display.scale")),
		terminal.WithLogger(blackjackvm.NewLeveledLogger("terminal")))
	if err != nil {
		return err
	}
	defer display.Close()

	address := v.GetString("server.address")
	conn, err := net.DialTimeout("tcp", address, v.GetDuration("server.dial_timeout"))
	if err != nil {
		log.Errorf("action: connect | result: fail | address: %s | error: %v", address, err)
		display.Disconnected(err)
		display.Wait(ctx)
		return err
	}
	log.Infof("action: connect | result: success | address: %s", address)

	err = blackjackvm.RunClient(ctx, conn, display,
		blackjackvm.WithClientLogger(blackjackvm.NewLeveledLogger("client")),
		blackjackvm.WithTickRate(v.GetInt("tick_rate")),
		blackjackvm.WithDisplayScale(v.GetInt("display.scale")),
		blackjackvm.WithInputWriteTimeout(v.GetDuration("input.write_timeout")))

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		log.Infof("action: disconnect | result: success")
		return nil
	case blackjackvm.IsError(err, blackjackvm.ErrConfiguration):
		return err
	default:
		// RunClient already reported the failure on the display.
		display.Wait(ctx)
		return err
	}
}

func main() {
	v, err := InitConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	w, closeLog, err := logOutput(v.GetString("log.file"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	if err := blackjackvm.InitLogging(v.GetString("log.level"), w); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log.Infof("action: config | result: success | server_address: %s | tick_rate: %d | display_scale: %d | log_level: %s",
		v.GetString("server.address"),
		v.GetInt("tick_rate"),
		v.GetInt("display.scale"),
		v.GetString("log.level"),
	)

	if err := run(v); err != nil {
		log.Errorf("action: run | result: fail | error: %v", err)
		closeLog()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
