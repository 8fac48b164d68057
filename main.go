// medassist is a terminal chat client for drug information. Questions are
// typed or spoken: voice capture goes through a platform speech engine when
// one is configured, else the microphone is recorded and transcribed by the
// MedAssist service.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/varun-cu-unv/MedAssist/audio"
	"github.com/varun-cu-unv/MedAssist/chat"
	"github.com/varun-cu-unv/MedAssist/doctor"
	"github.com/varun-cu-unv/MedAssist/locale"
	"github.com/varun-cu-unv/MedAssist/log"
	"github.com/varun-cu-unv/MedAssist/recognizer"
	"github.com/varun-cu-unv/MedAssist/speech"
	"github.com/varun-cu-unv/MedAssist/transcribe"
	"github.com/varun-cu-unv/MedAssist/update"
)

var version = "dev"

const defaultServer = "http://localhost:5000"

var shutdownOnce sync.Once

func gracefulShutdown(p *tea.Program) {
	shutdownOnce.Do(func() {
		log.Close()
		if p != nil {
			p.Quit()
		}
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	run()
}

func run() {
	if len(os.Args) > 1 && os.Args[1] == "update" {
		runUpdate()
		return
	}

	serverFlag := flag.String("server", envOr("MEDASSIST_SERVER", defaultServer), "MedAssist service URL")
	langFlag := flag.String("lang", envOr("MEDASSIST_LANG", "en"), "UI language code (en, es, fr, hi)")
	recognizerFlag := flag.String("recognizer", os.Getenv("MEDASSIST_RECOGNIZER"), "speech engine command for native recognition (empty: record and transcribe remotely)")
	deviceFlag := flag.String("device", "", "use the microphone whose name contains this string")
	setupFlag := flag.Bool("setup", false, "pick the microphone interactively")
	listDevicesFlag := flag.Bool("list-devices", false, "list capture devices and exit")
	doctorFlag := flag.Bool("doctor", false, "run environment checks and exit")
	versionFlag := flag.Bool("version", false, "print version and exit")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("medassist %s\n", version)
		return
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	if crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n",
			time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *doctorFlag {
		os.Exit(doctor.Run(*serverFlag, *recognizerFlag))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	if _, ok := profileFor(*langFlag); !ok {
		log.Warnf("unsupported language %q, falling back to English strings", *langFlag)
	}

	actx, err := newAudioContext()
	if err != nil {
		// Voice input degrades; typed queries still work.
		log.Warnf("audio unavailable: %v", err)
		actx = nil
	} else {
		defer actx.Close()
	}

	if *listDevicesFlag {
		if actx == nil {
			fmt.Println("No audio context available.")
			os.Exit(1)
		}
		listDevices(actx)
		return
	}

	device, err := pickDevice(actx, *deviceFlag, *setupFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if device != nil && audio.IsBluetooth(device.Name) {
		log.Warnf("bluetooth microphone %q: telephony-profile capture quality", device.Name)
	}

	caps := speech.Capabilities{
		NativeRecognizer: *recognizerFlag != "",
		Microphone:       actx != nil,
	}
	strategy := speech.SelectStrategy(caps)
	if strategy == speech.StrategyRawAudio && !caps.Microphone {
		log.Warnf("no microphone: voice capture will fail, typed queries still work")
	}

	var backend speech.Backend
	switch strategy {
	case speech.StrategyNative:
		rec, err := recognizer.NewExec(*recognizerFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: speech engine: %v\n", err)
			os.Exit(1)
		}
		backend = speech.NewNative(rec)
	default:
		tclient := transcribe.New(*serverFlag)
		raw := speech.NewRawAudio(actx, device, tclient)
		backend = raw
		log.Info("negotiated capture format: " + raw.Format())
		// Pre-open the connection so the handshake never lands inside a
		// user's recording.
		go tclient.Warm()
	}

	recorder := speech.NewRecorder(backend)
	dispatcher := chat.NewDispatcher(chat.NewClient(*serverFlag))

	model := newChatModel(recorder, dispatcher, *langFlag, string(strategy))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())

	go func() {
		for u := range recorder.Updates() {
			p.Send(captureMsg(u))
		}
	}()
	go func() {
		for u := range dispatcher.Updates() {
			p.Send(queryMsg(u))
		}
	}()

	update.StartBackgroundCheck(version, log.Dir(), func(rel update.Release) {
		p.Send(updateAvailableMsg{version: rel.Version})
	})

	if _, err := p.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		os.Exit(1)
	}
	gracefulShutdown(p)
}

// newAudioContext opens the platform capture backend, or the WAV-replay
// fake when MEDASSIST_FAKE_AUDIO names a file.
func newAudioContext() (audio.Context, error) {
	if path := os.Getenv("MEDASSIST_FAKE_AUDIO"); path != "" {
		return audio.NewFakeContext(path, true)
	}
	return audio.NewContext()
}

func listDevices(actx audio.Context) {
	devices, err := actx.Devices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, d := range devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		note := ""
		if audio.IsBluetooth(d.Name) {
			note = "  (bluetooth: lower capture quality)"
		}
		fmt.Printf("%s %s%s\n", marker, d.Name, note)
	}
}

func pickDevice(actx audio.Context, name string, setup bool) (*audio.DeviceInfo, error) {
	if actx == nil || (name == "" && !setup) {
		return nil, nil
	}
	if name != "" {
		return audio.Find(actx, name)
	}
	return audio.SelectDevice(actx)
}

func profileFor(lang string) (string, bool) {
	for _, code := range locale.Supported() {
		if code == lang {
			return code, true
		}
	}
	return "", false
}

// runUpdate handles the `medassist update` subcommand.
func runUpdate() {
	if version == "dev" {
		fmt.Println("Dev build — cannot check for updates.")
		return
	}
	fmt.Printf("medassist %s — checking for updates...\n", version)
	rel, err := update.CheckLatest(version)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if rel == nil {
		fmt.Println("Already up to date.")
		return
	}
	fmt.Printf("Update available: %s -> %s\n", version, rel.Version)
	fmt.Print("Continue? [y/N] ")
	var answer string
	fmt.Scanln(&answer)
	if answer != "y" && answer != "Y" {
		fmt.Println("Aborted.")
		return
	}
	fmt.Printf("Downloading %s...\n", rel.Version)
	if err := update.Apply(rel); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated to %s\n", rel.Version)
}
