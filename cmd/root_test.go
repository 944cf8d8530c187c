package cmd

import (
	"os"
	"testing"

	"github.com/zhubert/parley/internal/config"
	"github.com/zhubert/parley/internal/logger"
)

func TestMain(m *testing.M) {
	// Keep test runs out of the shared debug log
	logger.Reset()
	logger.Init(os.DevNull)
	code := m.Run()
	logger.Reset()
	os.Exit(code)
}

// withTempHome points the config directory at a fresh temp dir and clears
// any environment overrides.
func withTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvTimeout, "")
	return home
}

func TestDebugFlagDefaultFalse(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("debug")
	if flag == nil {
		t.Fatal("--debug flag not found")
	}
	if flag.DefValue != "false" {
		t.Errorf("--debug default = %q, want %q", flag.DefValue, "false")
	}
}

func TestQuietFlagExists(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("quiet")
	if flag == nil {
		t.Fatal("--quiet flag not found")
	}
	if flag.DefValue != "false" {
		t.Errorf("--quiet default = %q, want %q", flag.DefValue, "false")
	}
	if flag.Shorthand != "q" {
		t.Errorf("--quiet shorthand = %q, want %q", flag.Shorthand, "q")
	}
}

func TestConnectionFlagsExist(t *testing.T) {
	for _, name := range []string{"api-url", "token"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag not found", name)
		}
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string]bool{"login": false, "logout": false, "conversations": false, "demo": false, "clean": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestInitConfig_QuietOverridesDebug(t *testing.T) {
	origDebug, origQuiet := debugMode, quietMode
	defer func() { debugMode, quietMode = origDebug, origQuiet }()

	debugMode = true
	quietMode = true

	// Should not panic - quiet should take precedence
	initConfig()
}

func TestVersionTemplate(t *testing.T) {
	origV, origC, origD := version, commit, date
	defer SetVersionInfo(origV, origC, origD)

	SetVersionInfo("1.2.3", "none", "unknown")
	if got := versionTemplate(); got != "parley 1.2.3\n" {
		t.Errorf("versionTemplate() = %q", got)
	}

	SetVersionInfo("1.2.3", "abc123", "2024-03-01")
	want := "parley 1.2.3\n  commit: abc123\n  built:  2024-03-01\n"
	if got := versionTemplate(); got != want {
		t.Errorf("versionTemplate() = %q, want %q", got, want)
	}
}

func TestLoadConfig_APIURLFlagWins(t *testing.T) {
	withTempHome(t)
	t.Setenv(config.EnvAPIURL, "http://env.example/api")

	orig := apiURLFlag
	defer func() { apiURLFlag = orig }()

	apiURLFlag = "http://flag.example/api"
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if got := cfg.GetAPIURL(); got != "http://flag.example/api" {
		t.Errorf("GetAPIURL() = %q, want the flag value", got)
	}

	apiURLFlag = "ftp://nope"
	if _, err := loadConfig(); err == nil {
		t.Error("an invalid --api-url should be rejected")
	}
}

func TestResolveToken(t *testing.T) {
	withTempHome(t)

	orig := tokenFlag
	defer func() { tokenFlag = orig }()

	tokenFlag = ""
	if _, err := resolveToken(); err == nil {
		t.Error("expected an error with no token anywhere")
	}

	if err := config.SaveToken("stored"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	if got, _ := resolveToken(); got != "stored" {
		t.Errorf("resolveToken() = %q, want stored token", got)
	}

	tokenFlag = "from-flag"
	if got, _ := resolveToken(); got != "from-flag" {
		t.Errorf("resolveToken() = %q, want flag value", got)
	}
}

func TestIdentityOf(t *testing.T) {
	if got := identityOf("not-a-jwt"); got != "" {
		t.Errorf("identityOf(opaque) = %q, want empty", got)
	}
}
