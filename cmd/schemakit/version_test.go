package main

import (
	"strings"
	"testing"
)

func TestBuildInfo(t *testing.T) {
	rows := buildInfo()

	var keys []string
	values := make(map[string]string)
	for _, r := range rows {
		k := r["key"].(string)
		keys = append(keys, k)
		values[k] = r["value"].(string)
	}

	if got, want := strings.Join(keys, ","), "version,commit,built,go,platform,modules,formats,drivers"; got != want {
		t.Errorf("keys = %s, want %s", got, want)
	}
	if values["version"] != version {
		t.Errorf("version = %q, want %q", values["version"], version)
	}
	if values["commit"] == "" || values["built"] == "" {
		t.Errorf("commit = %q, built = %q, want non-empty", values["commit"], values["built"])
	}
	for _, want := range []string{".yaml", ".toml", ".cue"} {
		if !strings.Contains(values["modules"], want) {
			t.Errorf("modules = %q, want %s", values["modules"], want)
		}
	}
	if !strings.Contains(values["drivers"], "postgres") {
		t.Errorf("drivers = %q, want postgres", values["drivers"])
	}
}
