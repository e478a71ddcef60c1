// SPDX-License-Identifier: GPL-3.0-or-later

package analysis

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var (
	dataConfigJSON, _ = os.ReadFile("testdata/config.json")
	dataConfigYAML, _ = os.ReadFile("testdata/config.yaml")
)

func Test_testDataIsValid(t *testing.T) {
	for name, data := range map[string][]byte{
		"dataConfigJSON": dataConfigJSON,
		"dataConfigYAML": dataConfigYAML,
	} {
		require.NotNil(t, data, name)
	}
}

func TestConfig_Serialize(t *testing.T) {
	tests := map[string]struct {
		config    []byte
		unmarshal func(in []byte, out any) (err error)
		marshal   func(in any) (out []byte, err error)
	}{
		"json": {config: dataConfigJSON, marshal: json.Marshal, unmarshal: json.Unmarshal},
		"yaml": {config: dataConfigYAML, marshal: yaml.Marshal, unmarshal: yaml.Unmarshal},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var cfg Config
			require.NoError(t, test.unmarshal(test.config, &cfg), "unmarshal test->config")
			bs, err := test.marshal(cfg)
			require.NoError(t, err, "marshal config")

			var want map[string]any
			var got map[string]any

			require.NoError(t, test.unmarshal(test.config, &want), "unmarshal test->map")
			require.NoError(t, test.unmarshal(bs, &got), "unmarshal config->map")

			require.NotNil(t, want, "want map")
			require.NotNil(t, got, "got map")

			assert.Equal(t, want, got)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	want := Config{
		RecordElections: true,
		TrackEvaluation: TrackEvaluationDataPlane,
		SynthesizeL3:    false,
		MaxConcurrency:  4,
		LogLevel:        "debug",
	}

	for _, path := range []string{"testdata/config.json", "testdata/config.yaml"} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			cfg, err := LoadConfig(path)
			require.NoError(t, err)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("record_elections: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.RecordElections)
	assert.True(t, cfg.SynthesizeL3)
	assert.Equal(t, TrackEvaluationStatic, cfg.TrackEvaluation)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.MaxConcurrency)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]struct {
		name    string
		content string
		invalid bool
	}{
		"unknown track evaluation": {
			name:    "track.yaml",
			content: "track_evaluation: magic\n",
			invalid: true,
		},
		"negative concurrency": {
			name:    "concurrency.json",
			content: `{"max_concurrency": -1}`,
			invalid: true,
		},
		"unknown log level": {
			name:    "level.yaml",
			content: "log_level: chatty\n",
			invalid: true,
		},
		"malformed json": {
			name:    "malformed.json",
			content: `{"record_elections": `,
		},
		"malformed yaml": {
			name:    "malformed.yaml",
			content: "record_elections: [\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, test.name)
			require.NoError(t, os.WriteFile(path, []byte(test.content), 0o644))

			_, err := LoadConfig(path)

			require.Error(t, err)
			if test.invalid {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NotErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
