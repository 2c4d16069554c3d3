package argresolve

import (
	"errors"
	"testing"

	animerrors "github.com/provide-io/animbundle/pkg/errors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "plain token",
			args: []string{"-batchmode", "-name=idle_neutral_1"},
			want: "idle_neutral_1",
		},
		{
			name: "quoted token",
			args: []string{`"-name=idle_neutral_1"`},
			want: "idle_neutral_1",
		},
		{
			name: "quoted value",
			args: []string{`-name="walk cycle"`},
			want: "walk cycle",
		},
		{
			name: "first match wins",
			args: []string{"-name=first", "-name=second"},
			want: "first",
		},
		{
			name: "value keeps later equals signs",
			args: []string{"-name=a=b"},
			want: "a=b",
		},
		{
			name: "similar flag is ignored",
			args: []string{"-names=wrong", "-name=right"},
			want: "right",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve("name", tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve(name, %q) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestResolveMissing(t *testing.T) {
	for _, args := range [][]string{nil, {}, {"-batchmode", "name=x", "--name", "x"}} {
		_, err := Resolve("name", args)
		if !errors.Is(err, animerrors.ErrArgumentNotFound) {
			t.Errorf("Resolve(name, %q) error = %v, want ErrArgumentNotFound", args, err)
		}
	}
}

func TestResolveDefault(t *testing.T) {
	if got := ResolveDefault("outputRoot", []string{"-name=x"}, "/tmp/out"); got != "/tmp/out" {
		t.Errorf("ResolveDefault fallback = %q", got)
	}
	if got := ResolveDefault("outputRoot", []string{"-outputRoot=/srv"}, "/tmp/out"); got != "/srv" {
		t.Errorf("ResolveDefault = %q, want /srv", got)
	}
}
