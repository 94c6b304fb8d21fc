package util

import "testing"

func TestDefaultOutputName(t *testing.T) {
	cases := map[string]string{
		"/tmp/insights-host-20240101.tar.gz": "synthetic_idle_insights-host-20240101",
		"bundle.tgz":                         "synthetic_idle_bundle",
		"bundle.tar":                         "synthetic_idle_bundle",
		"bundle":                             "synthetic_idle_bundle",
	}
	for input, want := range cases {
		if got := DefaultOutputName(input, "idle"); got != want {
			t.Fatalf("DefaultOutputName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestUnitName(t *testing.T) {
	if got := UnitName("under_pressure"); got != "synthetic_pcp_under_pressure" {
		t.Fatalf("unexpected unit name: %s", got)
	}
}

func TestSanitizeName(t *testing.T) {
	if got := SanitizeName("out/put name.tar.gz"); got != "out_put_name.tar.gz" {
		t.Fatalf("unexpected sanitized name: %s", got)
	}
}
