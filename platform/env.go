// Package platform integrates with the host platform: run/account
// environment facts, the user API, the billing ledger, and run input.
//
// Everything read here is assembled into immutable structs at startup
// and passed into the orchestrator explicitly, so the harvest core never
// touches ambient process state.
package platform

import (
	"os"
	"strconv"

	"github.com/harvestapi/prospector/types"
)

// Environment variable names supplied by the host platform.
const (
	EnvAPIURL            = "PLATFORM_API_URL"
	EnvToken             = "PLATFORM_TOKEN"
	EnvActorID           = "PLATFORM_ACTOR_ID"
	EnvRunID             = "PLATFORM_RUN_ID"
	EnvBuildID           = "PLATFORM_BUILD_ID"
	EnvUserID            = "PLATFORM_USER_ID"
	EnvMemoryMB          = "PLATFORM_MEMORY_MBYTES"
	EnvMaxPaidItems      = "PLATFORM_MAX_PAID_DATASET_ITEMS"
	EnvIsPayPerEvent     = "PLATFORM_IS_PAY_PER_EVENT"
	EnvMaxTotalChargeUSD = "PLATFORM_MAX_TOTAL_CHARGE_USD"
)

// Env holds the host-supplied run environment.
type Env struct {
	APIURL            string
	Token             string
	ActorID           string
	RunID             string
	BuildID           string
	UserID            string
	MemoryMB          int
	MaxPaidItems      int
	IsPayPerEvent     bool
	MaxTotalChargeUSD float64
}

// LoadEnv reads the host environment. Missing variables yield zero
// values; validation of what is actually required happens at the point
// of use (e.g. the dataset sink requires a run ID).
func LoadEnv() Env {
	return Env{
		APIURL:            os.Getenv(EnvAPIURL),
		Token:             os.Getenv(EnvToken),
		ActorID:           os.Getenv(EnvActorID),
		RunID:             os.Getenv(EnvRunID),
		BuildID:           os.Getenv(EnvBuildID),
		UserID:            os.Getenv(EnvUserID),
		MemoryMB:          envInt(EnvMemoryMB),
		MaxPaidItems:      envInt(EnvMaxPaidItems),
		IsPayPerEvent:     envBool(EnvIsPayPerEvent),
		MaxTotalChargeUSD: envFloat(EnvMaxTotalChargeUSD),
	}
}

// RunMeta converts the environment's run identity into types.RunMeta.
func (e Env) RunMeta() types.RunMeta {
	return types.RunMeta{
		ActorID:  e.ActorID,
		RunID:    e.RunID,
		BuildID:  e.BuildID,
		MemoryMB: e.MemoryMB,
	}
}

func envInt(name string) int {
	v, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return 0
	}
	return v
}

func envBool(name string) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	if err != nil {
		return false
	}
	return v
}

func envFloat(name string) float64 {
	v, err := strconv.ParseFloat(os.Getenv(name), 64)
	if err != nil {
		return 0
	}
	return v
}
