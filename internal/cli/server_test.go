package cli

import "testing"

func TestResolvePort(t *testing.T) {
	cases := []struct {
		name                  string
		flag, env, configured string
		want                  string
	}{
		{name: "flag wins", flag: "9000", env: "9100", configured: "9200", want: "9000"},
		{name: "env over config", env: "9100", configured: "9200", want: "9100"},
		{name: "config used", configured: "9200", want: "9200"},
		{name: "default", want: "8080"},
	}
	for _, tc := range cases {
		if got := resolvePort(tc.flag, tc.env, tc.configured); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestPortFlagDefaultsEmpty(t *testing.T) {
	t.Setenv("PORT", "9100")
	cmd := newRootCmd()
	flag := cmd.PersistentFlags().Lookup("port")
	if flag == nil {
		t.Fatalf("expected --port flag")
	}
	if flag.DefValue != "" {
		t.Fatalf("--port must default empty so server.port can apply, got %q", flag.DefValue)
	}
}
