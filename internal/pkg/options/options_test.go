package options

import (
	"reflect"
	"testing"

	"github.com/bytedance/gg/gptr"
	"github.com/spf13/pflag"
)

func TestPluginsOptionsIsPluginEnabled(t *testing.T) {
	o := NewPluginsOptions()
	o.Deny = []string{"sql-query"}
	o.Entries["notes"] = PluginEntryConfig{Enabled: gptr.Of(false)}
	o.Entries["web-search"] = PluginEntryConfig{Config: map[string]interface{}{"api_key": "x"}}

	tests := []struct {
		id   string
		want bool
	}{
		{"sql-query", false},
		{"notes", false},
		{"web-search", true},
		{"host-info", true},
	}
	for _, tt := range tests {
		if got := o.IsPluginEnabled(tt.id); got != tt.want {
			t.Errorf("IsPluginEnabled(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}

	o.Allow = []string{"web-search"}
	if o.IsPluginEnabled("host-info") {
		t.Error("host-info should be filtered out by allow list")
	}

	got := o.DisabledPlugins([]string{"web-search", "notes", "host-info", "sql-query"})
	want := []string{"host-info", "notes", "sql-query"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DisabledPlugins() = %v, want %v", got, want)
	}
}

func TestPluginsOptionsValidate(t *testing.T) {
	o := NewPluginsOptions()
	if errs := o.Validate(); len(errs) != 0 {
		t.Fatalf("defaults should validate, got %v", errs)
	}

	o.Slots.Memory = "none"
	o.Slots.Search = "web search"
	o.Entries["bad.id"] = PluginEntryConfig{}
	o.Allow = []string{"notes"}
	o.Deny = []string{"notes"}
	if errs := o.Validate(); len(errs) != 3 {
		t.Errorf("Validate() = %v, want 3 errors", errs)
	}
}

func TestPluginsOptionsFlags(t *testing.T) {
	o := NewPluginsOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)
	if err := fs.Parse([]string{"--plugins.deny=notes,toolbox", "--plugins.slots.search=none"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(o.Deny, []string{"notes", "toolbox"}) {
		t.Errorf("Deny = %v", o.Deny)
	}
	if o.SlotMap()["search"] != "none" {
		t.Errorf("SlotMap() = %v", o.SlotMap())
	}
}

func TestServerRunOptions(t *testing.T) {
	o := NewServerRunOptions()
	if got := o.Address(); got != "127.0.0.1:11790" {
		t.Errorf("Address() = %q", got)
	}
	o.BindPort = 70000
	o.Mode = "fast"
	if errs := o.Validate(); len(errs) != 2 {
		t.Errorf("Validate() = %v, want 2 errors", errs)
	}
}

func TestLogOptionsValidate(t *testing.T) {
	o := NewLogOptions()
	if errs := o.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v", errs)
	}
	o.Level = "loud"
	if errs := o.Validate(); len(errs) != 1 {
		t.Errorf("Validate() = %v, want 1 error", errs)
	}
}
