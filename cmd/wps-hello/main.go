// Command wps-hello attaches to a radio over a serial port and runs one
// node through its connect/send/poll loop, printing what it receives.
//
// Usage: see the pflag-generated -help text.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kg2e0-wps/wps/internal/radio"
	"github.com/kg2e0-wps/wps/internal/wpsconfig"
	"github.com/kg2e0-wps/wps/internal/wpslog"
	"github.com/kg2e0-wps/wps/wps"
)

func main() {
	configPath := pflag.StringP("config", "c", "node.yaml", "Node profile (YAML)")
	port := pflag.StringP("port", "p", "", "Serial device the radio is attached to (overrides the profile)")
	baud := pflag.IntP("baud", "b", 0, "Serial baud rate, 0 leaves it alone")
	message := pflag.StringP("message", "m", "hello", "Payload to send once connected")
	help := pflag.Bool("help", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - attach to a radio and exchange one message.\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger, err := wpslog.New(wpslog.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %s\n", err)
		os.Exit(1)
	}

	profile, err := wpsconfig.Load(*configPath)
	if err != nil {
		logger.Error("loading profile", "path", *configPath, "err", err)
		os.Exit(1)
	}
	if *port != "" {
		profile.Port = *port
	}
	if *baud != 0 {
		profile.BaudRate = *baud
	}

	driver, err := radio.Open(profile.Port, profile.BaudRate, nil)
	if err != nil {
		logger.Error("opening radio", "port", profile.Port, "err", err)
		os.Exit(1)
	}
	defer driver.Close()

	node := wps.NewNode(driver, profile.NodeConfig())
	if err := node.ConfigNetworkChannelSequence(profile.ChannelSequenceConfig()); err != wps.NoError {
		logger.Error("channel sequence", "err", err)
		os.Exit(1)
	}
	conn, err := node.AddConnection(profile.ConnectionConfig())
	if err != wps.NoError {
		logger.Error("add connection", "err", err)
		os.Exit(1)
	}
	if err := node.ConfigNetworkSchedule(profile.ScheduleConfig()); err != wps.NoError {
		logger.Error("schedule", "err", err)
		os.Exit(1)
	}
	if err := node.Connect(); err != wps.NoError {
		logger.Error("connect", "err", err)
		os.Exit(1)
	}

	slot, err := conn.GetFreeSlot(len(*message))
	if err != wps.NoError {
		logger.Error("get free slot", "err", err)
		os.Exit(1)
	}
	copy(slot, *message)
	if err := conn.Send(slot); err != wps.NoError {
		logger.Error("send", "err", err)
		os.Exit(1)
	}
	logger.Transmit("queued message", "payload", *message)

	for {
		if err := node.Poll(); err != wps.NoError {
			logger.Error("poll", "err", err)
			os.Exit(1)
		}
		if payload, err := conn.Read(); err == wps.NoError {
			logger.Receive("frame received", "len", len(payload))
			conn.ReadDone()
		}
		time.Sleep(time.Millisecond)
	}
}
