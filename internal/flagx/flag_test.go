package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "flag with equals",
			args:         []string{"-config=alt.json", "-a", "localhost"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end",
			args:         []string{"-f"},
			allowedFlags: []string{"-f"},
			want:         []string{"-f"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-f", "-w", "24"},
			allowedFlags: []string{"-f", "-w"},
			want:         []string{"-f", "-w", "24"},
		},
		{
			name:         "escrow flags among client flags",
			args:         []string{"-a", ":50051", "-o", "owner.near", "-i", "3", "-f", "5"},
			allowedFlags: []string{"-o", "-f"},
			want:         []string{"-o", "owner.near", "-f", "5"},
		},
		{
			name:         "repeated flag preserved in order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigPath(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("short -c", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/short.json"}
		assert.Equal(t, "/path/short.json", ConfigPath())
	})

	t.Run("long -config, last wins", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", "/path/1.json", "-config", "/path/2.json"}
		assert.Equal(t, "/path/2.json", ConfigPath())
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv(ConfigEnv, "/etc/stickyhabits.json")
		os.Args = []string{"testbin", "-x", "1"}
		assert.Equal(t, "/etc/stickyhabits.json", ConfigPath())
	})

	t.Run("flag beats env", func(t *testing.T) {
		t.Setenv(ConfigEnv, "/etc/stickyhabits.json")
		os.Args = []string{"testbin", "-c", "local.json"}
		assert.Equal(t, "local.json", ConfigPath())
	})

	t.Run("nothing", func(t *testing.T) {
		t.Setenv(ConfigEnv, "")
		os.Args = []string{"testbin"}
		assert.Empty(t, ConfigPath())
	})
}
