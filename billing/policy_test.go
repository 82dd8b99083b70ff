package billing_test

import (
	"testing"

	"github.com/harvestapi/prospector/billing"
	"github.com/harvestapi/prospector/types"
)

func TestDecide_PayPerEvent(t *testing.T) {
	withEmail := []string{types.PaymentCapabilityProfileWithEmail}

	tests := []struct {
		name         string
		mode         types.ScrapeMode
		capabilities []string
		wantChannel  string
	}{
		{"short", types.ModeShort, nil, billing.ChannelShortProfile},
		{"full", types.ModeFull, nil, billing.ChannelFullProfile},
		{"email with capability", types.ModeEmail, withEmail, billing.ChannelFullProfileEmail},
		{"email without capability falls back", types.ModeEmail, []string{"linkedinProfile"}, billing.ChannelFullProfile},
		{"email with empty capabilities falls back", types.ModeEmail, nil, billing.ChannelFullProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := billing.Decide(tt.mode, tt.capabilities, true)
			if d.Channel != tt.wantChannel {
				t.Errorf("Decide(%v, %v) channel = %q, want %q", tt.mode, tt.capabilities, d.Channel, tt.wantChannel)
			}
		})
	}
}

func TestDecide_FlatRateAlwaysDefaultChannel(t *testing.T) {
	for _, mode := range []types.ScrapeMode{types.ModeShort, types.ModeFull, types.ModeEmail} {
		d := billing.Decide(mode, []string{types.PaymentCapabilityProfileWithEmail}, false)
		if d.Channel != billing.ChannelDefault {
			t.Errorf("mode %v: channel = %q, want default", mode, d.Channel)
		}
	}
}

func TestDecide_Deterministic(t *testing.T) {
	caps := []string{"linkedinProfile"}
	first := billing.Decide(types.ModeEmail, caps, true)
	for n := 0; n < 10; n++ {
		if got := billing.Decide(types.ModeEmail, caps, true); got != first {
			t.Fatalf("Decide not deterministic: %v then %v", first, got)
		}
	}
}

func TestShouldChargeStart(t *testing.T) {
	tests := []struct {
		name      string
		scraped   int
		succeeded bool
		want      bool
	}{
		{"zero items with success", 0, true, true},
		{"at threshold", 5, true, true},
		{"above threshold", 6, true, false},
		{"no successful request", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := billing.ShouldChargeStart(tt.scraped, tt.succeeded); got != tt.want {
				t.Errorf("ShouldChargeStart(%d, %v) = %v, want %v", tt.scraped, tt.succeeded, got, tt.want)
			}
		})
	}
}
