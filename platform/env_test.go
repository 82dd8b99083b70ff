package platform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harvestapi/prospector/platform"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv(platform.EnvAPIURL, "https://host.example")
	t.Setenv(platform.EnvRunID, "run-1")
	t.Setenv(platform.EnvActorID, "actor-1")
	t.Setenv(platform.EnvUserID, "u1")
	t.Setenv(platform.EnvMaxPaidItems, "250")
	t.Setenv(platform.EnvIsPayPerEvent, "true")
	t.Setenv(platform.EnvMaxTotalChargeUSD, "12.5")
	t.Setenv(platform.EnvMemoryMB, "1024")

	env := platform.LoadEnv()
	if env.APIURL != "https://host.example" || env.RunID != "run-1" {
		t.Errorf("env = %+v", env)
	}
	if env.MaxPaidItems != 250 {
		t.Errorf("MaxPaidItems = %d, want 250", env.MaxPaidItems)
	}
	if !env.IsPayPerEvent {
		t.Error("IsPayPerEvent = false, want true")
	}
	if env.MaxTotalChargeUSD != 12.5 {
		t.Errorf("MaxTotalChargeUSD = %v", env.MaxTotalChargeUSD)
	}

	meta := env.RunMeta()
	if meta.RunID != "run-1" || meta.ActorID != "actor-1" || meta.MemoryMB != 1024 {
		t.Errorf("meta = %+v", meta)
	}
}

func TestLoadEnv_MalformedNumbersZero(t *testing.T) {
	t.Setenv(platform.EnvMaxPaidItems, "not-a-number")
	t.Setenv(platform.EnvIsPayPerEvent, "maybe")

	env := platform.LoadEnv()
	if env.MaxPaidItems != 0 {
		t.Errorf("MaxPaidItems = %d, want 0", env.MaxPaidItems)
	}
	if env.IsPayPerEvent {
		t.Error("IsPayPerEvent = true, want false")
	}
}

func TestLoadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	content := `{
		"profileScraperMode": "2",
		"firstName": "Jane",
		"lastName": "Doe",
		"locations": ["Paris"],
		"maxItems": 3
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	input, err := platform.LoadInput(path)
	if err != nil {
		t.Fatalf("LoadInput: %v", err)
	}
	if input.ProfileScraperMode != "2" || input.FirstName != "Jane" || input.MaxItems != 3 {
		t.Errorf("input = %+v", input)
	}
	if len(input.Locations) != 1 || input.Locations[0] != "Paris" {
		t.Errorf("locations = %v", input.Locations)
	}
}

func TestLoadInput_Missing(t *testing.T) {
	if _, err := platform.LoadInput(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestLoadInput_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := platform.LoadInput(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
