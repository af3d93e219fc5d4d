// Copyright 2025 The VoxWave Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"runtime/pprof"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/voxwave/voxwave/catalog"
	"github.com/voxwave/voxwave/logger"
	"github.com/voxwave/voxwave/media"
	"github.com/voxwave/voxwave/player"
	"github.com/voxwave/voxwave/remote"
	"github.com/voxwave/voxwave/room"
	"github.com/voxwave/voxwave/track"
)

var osExit = os.Exit  // A variable to allow mocking os.Exit in tests
var headlessMode bool // This can be set to true during tests
var testMode bool     // This can be set to true during tests, too

const DEVELOPMENT = "development"

// Name is the client name shown in the status bar
var Name string = "voxwave"

// Version is the program version; usually set from BuildInfo
var Version string = DEVELOPMENT

func readConfig(configFile *string) error {
	if configFile != nil && *configFile != "" {
		// use custom config file
		viper.SetConfigFile(*configFile)
	} else {
		// lookup default dirs
		viper.SetConfigName("voxwave")
		viper.SetConfigType("toml")
		viper.AddConfigPath("$HOME/.config/voxwave")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("Config file error: %s\n", err)
	}

	// the server is the only hard requirement; auth is optional because
	// search, library and listening all work anonymously
	if !viper.IsSet("server.host") {
		return fmt.Errorf("Config property server.host is required\n")
	}

	return nil
}

// parseConfig takes the first non-flag argument from flags and parses it
// into the viper config.
func parseConfig() {
	if u, e := url.Parse(flag.Arg(0)); e == nil {
		// If credentials were provided
		if len(u.User.Username()) > 0 {
			viper.Set("auth.username", u.User.Username())
			if p, s := u.User.Password(); s {
				viper.Set("auth.password", p)
			}
		}
		// Blank out the credentials so we can use the URL formatting
		u.User = nil
		viper.Set("server.host", u.String())
	} else {
		fmt.Printf("Invalid server format; must be a valid URL!")
		fmt.Printf("Usage: %s <args> [http[s]://[user:pass@]server:port]\n", os.Args[0])
		osExit(1)
	}
}

// dataDir is where the persisted queue lives.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "voxwave")
}

// return codes:
// 0 - OK
// 1 - generic errors
// 2 - main config errors
func main() {
	help := flag.Bool("help", false, "Print usage")
	enableMpris := flag.Bool("mpris", false, "Enable MPRIS2")
	joinRoom := flag.String("room", "", "join a listening room from an invite link or `room` id")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile := flag.String("memprofile", "", "write memory profile to `file`")
	configFile := flag.String("config", "", "use config `file`")
	version := flag.Bool("version", false, "print the voxwave version and exit")

	flag.Parse()
	if *help {
		fmt.Printf("USAGE: %s <args> [[user:pass@]server:port]\n", os.Args[0])
		flag.Usage()
		osExit(0)
	}
	if Version == DEVELOPMENT {
		if bi, ok := debug.ReadBuildInfo(); ok {
			Version = bi.Main.Version
		}
	}
	if *version {
		fmt.Printf("voxwave %s", Version)
		osExit(0)
	}

	// cpu/memprofile code straight from https://pkg.go.dev/runtime/pprof
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	// config gathering
	if len(flag.Args()) > 0 {
		parseConfig()
	}

	if err := readConfig(configFile); err != nil {
		if configFile == nil {
			fmt.Fprintf(os.Stderr, "Failed to read configuration: configuration file is nil\n")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read configuration from file '%s': %v\n", *configFile, err)
		}
		osExit(2)
	}

	logger := logger.Init()

	// init mpv element
	element, err := media.NewMpvElement(logger)
	if err != nil {
		fmt.Println("Unable to initialize mpv. Is mpv installed?")
		osExit(1)
	}

	client := catalog.NewClient(viper.GetString("server.host"), logger)
	if username := viper.GetString("auth.username"); username != "" {
		if err := client.Login(username, viper.GetString("auth.password")); err != nil {
			// anonymous mode still works, hosting rooms doesn't
			logger.PrintError("login", err)
		}
	}

	store := track.NewStore(dataDir())
	engine := media.NewEngine(element, client.StreamURL, logger)
	vplayer := player.NewPlayer(engine, store, logger)
	engine.RegisterEventConsumer(vplayer)

	// room identity: the account name when logged in so the server can
	// recognize us as a host, a throwaway id otherwise
	userID := client.Username()
	if userID == "" {
		userID = "guest-" + uuid.NewString()[:8]
	}
	session := room.NewSession(client.Host, userID, vplayer, logger)

	var mprisPlayer *remote.MprisPlayer
	// init mpris2 player control (linux only but fails gracefully on other systems)
	if *enableMpris {
		mprisPlayer, err = remote.RegisterMprisPlayer(vplayer, logger)
		if err != nil {
			fmt.Printf("Unable to register MPRIS with DBUS: %s\n", err)
			fmt.Println("Try running without MPRIS")
			osExit(1)
		}
		defer mprisPlayer.Close()
	}

	if testMode {
		fmt.Println("Running in test mode for testing.")
		osExit(0x23420001)
		return
	}

	if err := client.Ping(); err != nil {
		fmt.Printf("Error reaching server %s: %s\n", client.Host, err)
		osExit(1)
	}

	if headlessMode {
		fmt.Println("Running in headless mode for testing.")
		osExit(0)
		return
	}

	ui := InitGui(client, vplayer, engine, session, logger, mprisPlayer)

	if *joinRoom != "" {
		roomID := room.ParseJoinURL(*joinRoom)
		go func() {
			if err := session.Join(roomID); err != nil {
				logger.PrintError("join room", err)
			}
		}()
	}

	// run main loop
	if err := ui.Run(); err != nil {
		panic(err)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal("could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}
