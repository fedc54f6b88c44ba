package util

import (
	"reflect"
	"testing"
)

func TestUnderscore(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"build", "build"},
		{"buildImage", "build_image"},
		{"build-image", "build_image"},
		{"deploy:web", "deploy_web"},
		{"HTTPServer", "http_server"},
		{"step2Go", "step2_go"},
		{"  spaced  out ", "spaced_out"},
		{"a__b", "a_b"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := Underscore(tc.in); got != tc.want {
				t.Errorf("Underscore(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestScreamingSnake(t *testing.T) {
	tests := map[string]string{
		"apiToken":     "API_TOKEN",
		"region":       "REGION",
		"docker-image": "DOCKER_IMAGE",
	}
	for in, want := range tests {
		if got := ScreamingSnake(in); got != want {
			t.Errorf("ScreamingSnake(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseKeyValue(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		key     string
		value   string
		wantErr bool
	}{
		{"simple", "A=1", "A", "1", false},
		{"quoted", `B="two words"`, "B", "two words", false},
		{"equals in value", "C=x=y", "C", "x=y", false},
		{"empty value", "D=", "D", "", false},
		{"no equals", "E", "", "", true},
		{"empty key", "=v", "", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			k, v, err := ParseKeyValue(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if k != tc.key || v != tc.value {
				t.Errorf("got %q=%q, want %q=%q", k, v, tc.key, tc.value)
			}
		})
	}
}

func TestUnique(t *testing.T) {
	if got := Unique([]string{"b", "a", "b", "c", "a"}); !reflect.DeepEqual(got, []string{"b", "a", "c"}) {
		t.Errorf("Unique = %v", got)
	}
}

func TestContainsAndCoalesce(t *testing.T) {
	if !Contains([]string{"before:deploy"}, "before:deploy") {
		t.Error("expected Contains to find value")
	}
	if Coalesce("", "x", "y") != "x" {
		t.Error("expected first non-zero value")
	}
	if got := Map([]int{1, 2}, func(i int) int { return i * 2 }); !reflect.DeepEqual(got, []int{2, 4}) {
		t.Errorf("Map = %v", got)
	}
}
