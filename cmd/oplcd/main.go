// Command oplcd is the runtime's bootstrap entry point: it reads
// configuration, binds glue, initializes hardware, registers the known
// services, raises the scan thread to real-time priority, and starts
// every enabled service in declared order, following bootstrap() in
// the original runtime's core/bootstrap.cpp.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/openplc-go/runtime/config"
	"github.com/openplc-go/runtime/hardware"
	"github.com/openplc-go/runtime/ioimage"
	"github.com/openplc-go/runtime/logging"
	"github.com/openplc-go/runtime/modbus"
	"github.com/openplc-go/runtime/program"
	"github.com/openplc-go/runtime/ratelimit"
	"github.com/openplc-go/runtime/scan"
	"github.com/openplc-go/runtime/service"
)

// defaultConfigPath mirrors the relative path slave.cpp falls back to
// when reading its own copy of the configuration
// ("../etc/config.ini"), since get_config_path() itself is not part of
// the retrieved source.
const defaultConfigPath = "../etc/config.ini"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to the runtime's INI configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "oplcd:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	//======================================================
	//                 BOOTSTRAP CONFIGURATION
	//======================================================
	cfg, err := config.Load(configPath)
	enabledServices := cfg.Services
	if err != nil {
		enabledServices = config.DefaultServices
	}

	level, levelOK := logging.ParseLevel(cfg.Logging.Level)
	log := logging.New(level)
	if !levelOK {
		log.Warning().Str("level", cfg.Logging.Level).Log("unknown log level, defaulting to info")
	}
	if err != nil {
		log.Info().Str("path", configPath).Log("config file could not be read, defaulting to interactive+modbusmaster")
	}

	//======================================================
	//                 PLC INITIALIZATION
	//======================================================
	prog := program.Program(program.NoOp{})
	prog.ConfigInit()

	binding := ioimage.NewBinding(prog.TickTimeNS())

	//======================================================
	//                 HARDWARE INITIALIZATION
	//======================================================
	hw := hardware.Contract(hardware.Simulator{})
	if err := hw.Initialize(binding); err != nil {
		return fmt.Errorf("hardware initialization: %w", err)
	}
	defer hw.Finalize(binding)

	binding.WithLocked(func() {
		hw.SampleInputs(binding)
		hw.CommitOutputs(binding)
	})

	engine := &scan.Engine{
		Binding:  binding,
		Hardware: hw,
		Program:  prog,
		Log:      log,
		Overrun:  ratelimit.NewDiagnostics(map[time.Duration]int{time.Second: 1}),
	}

	//======================================================
	//                 SERVICE INITIALIZATION
	//======================================================
	registry := service.NewRegistry()

	modbusCfg := cfg.ModbusSlave
	spaces := modbus.SpaceConfig{
		CoilsSize:            modbusCfg.CoilsSize,
		DiscreteInputsSize:   modbusCfg.DiscreteInputsSize,
		HoldingRegistersSize: modbusCfg.HoldingRegistersSize,
		InputRegistersSize:   modbusCfg.InputRegistersSize,
	}
	strategy := modbus.NewStrategy(binding, spaces)
	writer := modbus.NewWriteCoalescer(strategy, 64, 5*time.Millisecond)
	registry.Register(&service.ModbusSlave{
		Server: &modbus.Server{
			Address:  modbusCfg.Address,
			Port:     modbusCfg.Port,
			Strategy: strategy,
			Writer:   writer,
			Log:      log,
		},
	})
	registry.Register(&service.Interactive{
		In:  os.Stdin,
		Out: os.Stdout,
		Log: log,
	})

	var runFlag atomic.Bool
	runFlag.Store(true)

	//======================================================
	//              REAL-TIME PRIORITY / SERVICE START
	//======================================================
	engine.RaisePriority()

	results := registry.StartAll(enabledServices, &runFlag)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Log("received shutdown signal")
		runFlag.Store(false)
	}()

	log.Info().Log("oplcd starting scan engine")
	engine.Run(&runFlag)

	runFlag.Store(false)
	for res := range results {
		if res.Err != nil {
			log.Warning().Str("service", res.Name).Err(res.Err).Log("service exited with error")
		}
	}

	return nil
}
