//go:build linux

package platform

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestPropertyEvent(t *testing.T) {
	const root, client = 1, 42
	tests := []struct {
		win  uint32
		name string
		want Event
	}{
		{root, "_NET_ACTIVE_WINDOW", Event{Kind: ActiveWindowChanged, Property: "_NET_ACTIVE_WINDOW"}},
		{root, "_NET_CURRENT_DESKTOP", Event{Kind: CurrentDesktopChanged, Property: "_NET_CURRENT_DESKTOP"}},
		{root, "_NET_WORKAREA", Event{Kind: WindowPropertyChanged, Window: root, Property: "_NET_WORKAREA"}},
		{client, "_NET_WM_STATE", Event{Kind: WindowPropertyChanged, Window: client, Property: "_NET_WM_STATE"}},
		// a client property with a root-only name is still a client change
		{client, "_NET_ACTIVE_WINDOW", Event{Kind: WindowPropertyChanged, Window: client, Property: "_NET_ACTIVE_WINDOW"}},
	}
	for _, tt := range tests {
		got := propertyEvent(xproto.Window(tt.win), root, tt.name)
		if got.Kind != tt.want.Kind || got.Window != tt.want.Window || got.Property != tt.want.Property {
			t.Errorf("propertyEvent(%d, %s) = %+v, want %+v", tt.win, tt.name, got, tt.want)
		}
	}
}
