// Command wps-audio runs the same node loop as wps-hello, but also samples
// the default audio input device and logs a running energy level alongside
// the radio's own CCA metrics — useful when co-locating the stack with an
// audio-based channel monitor (e.g. a repeater's receive audio) to sanity
// check that a busy channel and a busy CCA reading agree.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	"github.com/kg2e0-wps/wps/internal/radio"
	"github.com/kg2e0-wps/wps/internal/wpsconfig"
	"github.com/kg2e0-wps/wps/internal/wpslog"
	"github.com/kg2e0-wps/wps/wps"
)

const (
	sampleRate      = 44100
	framesPerBuffer = 1024
)

func main() {
	configPath := pflag.StringP("config", "c", "node.yaml", "Node profile (YAML)")
	help := pflag.Bool("help", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - run a node while monitoring the default audio input's energy level.\n\n", os.Args[0])
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
	if _, err := node.AddConnection(profile.ConnectionConfig()); err != wps.NoError {
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

	if err := portaudio.Initialize(); err != nil {
		logger.Error("portaudio init", "err", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	in := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, framesPerBuffer, in)
	if err != nil {
		logger.Error("opening audio input", "err", err)
		os.Exit(1)
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		logger.Error("starting audio input", "err", err)
		os.Exit(1)
	}
	defer stream.Stop()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := stream.Read(); err != nil {
				continue
			}
			logger.Info("audio level", "rms", rms(in))
		}
	}()

	for {
		if err := node.Poll(); err != wps.NoError {
			logger.Error("poll", "err", err)
			os.Exit(1)
		}
		time.Sleep(time.Millisecond)
	}
}

func rms(samples []int16) float64 {
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
