package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.ini")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_RoundTrip(t *testing.T) {
	path := writeTempConfig(t, `
; comment
[logging]
level = debug

[modbusslave]
enabled = true
port = 5020
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}

	sec, ok := cfg.Sections["modbusslave"]
	if !ok {
		t.Fatal(`Sections["modbusslave"] missing`)
	}
	if !sec.Enabled {
		t.Error("modbusslave section Enabled = false, want true")
	}
	if v, _ := sec.Get("port"); v != "5020" {
		t.Errorf(`Sections["modbusslave"].Get("port") = %q, want "5020"`, v)
	}

	if cfg.ModbusSlave.Port != 5020 {
		t.Errorf("ModbusSlave.Port = %d, want 5020", cfg.ModbusSlave.Port)
	}
	if !cfg.ModbusSlave.Enabled {
		t.Error("ModbusSlave.Enabled = false, want true")
	}

	found := false
	for _, s := range cfg.Services {
		if s == "modbusslave" {
			found = true
		}
	}
	if !found {
		t.Errorf("Services = %v, want to contain modbusslave", cfg.Services)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, "[modbusslave]\nenabled=true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ms := cfg.ModbusSlave
	if ms.Address != "127.0.0.1" || ms.Port != 502 {
		t.Errorf("defaults = %+v, want address 127.0.0.1 port 502", ms)
	}
	if ms.CoilsSize != 8192 || ms.DiscreteInputsSize != 8192 || ms.HoldingRegistersSize != 8192 || ms.InputRegistersSize != 1024 {
		t.Errorf("default sizes = %+v", ms)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.ini"))
	if err == nil {
		t.Fatal("Load of missing file: want error, got nil")
	}
}
