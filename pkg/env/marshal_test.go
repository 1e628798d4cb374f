package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	URL      string        `env:"CAMPUS_DATA_API_URL"`
	Origins  []string      `env:"CAMPUS_CORS_ORIGINS" envSeparator:","`
	Cooldown time.Duration `env:"CAMPUS_THROTTLE_COOLDOWN"`
	Items    int           `env:"CAMPUS_CONTEXT_ITEMS"`
	Telegram bool          `env:"CAMPUS_ENABLE_TELEGRAM"`
	Token    string        `env:"TELEGRAM_TOKEN,required,notEmpty"`
	Note     string        `env:"CAMPUS_NOTE"`
	Skipped  string
	hidden   string `env:"HIDDEN"`
}

func TestMarshalEnv(t *testing.T) {
	in := sample{
		URL:      "http://localhost:3000",
		Origins:  []string{"http://a", "http://b"},
		Cooldown: 30 * time.Minute,
		Items:    12,
		Token:    "123:abc",
		Note:     "office hours # room 4",
		Skipped:  "x",
		hidden:   "y",
	}

	out, err := MarshalEnv(&in)
	require.NoError(t, err)
	assert.Equal(t,
		"CAMPUS_DATA_API_URL=http://localhost:3000\n"+
			"CAMPUS_CORS_ORIGINS=http://a,http://b\n"+
			"CAMPUS_THROTTLE_COOLDOWN=30m0s\n"+
			"CAMPUS_CONTEXT_ITEMS=12\n"+
			"TELEGRAM_TOKEN=123:abc\n"+
			"CAMPUS_NOTE=\"office hours # room 4\"\n",
		out)

	// what godotenv reads back matches the input
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o600))
	parsed, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "office hours # room 4", parsed["CAMPUS_NOTE"])
	assert.Equal(t, "http://a,http://b", parsed["CAMPUS_CORS_ORIGINS"])
}

func TestMarshalEnv_Errors(t *testing.T) {
	_, err := MarshalEnv(sample{})
	assert.Error(t, err)

	_, err = MarshalEnv(&struct {
		M map[string]string `env:"M"`
	}{M: map[string]string{"a": "b"}})
	assert.ErrorContains(t, err, "unsupported kind map")
}

func TestMarshalEnv_Empty(t *testing.T) {
	out, err := MarshalEnv(&sample{})
	require.NoError(t, err)
	assert.Empty(t, out)
}
