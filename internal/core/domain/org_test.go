package domain

import "testing"

func TestIsDescendant(t *testing.T) {
	cases := []struct {
		name         string
		path         string
		ancestorPath string
		want         bool
	}{
		{name: "same unit", path: "/root/B1", ancestorPath: "/root/B1", want: true},
		{name: "direct child", path: "/root/B1/B1a", ancestorPath: "/root/B1", want: true},
		{name: "deep descendant", path: "/root/B1/B1a/B1a1", ancestorPath: "/root/B1", want: true},
		{name: "sibling", path: "/root/B2", ancestorPath: "/root/B1", want: false},
		{name: "prefix without separator", path: "/root/B10", ancestorPath: "/root/B1", want: false},
		{name: "ancestor of the ancestor", path: "/root", ancestorPath: "/root/B1", want: false},
		{name: "empty path", path: "", ancestorPath: "/root", want: false},
		{name: "empty ancestor", path: "/root/B1", ancestorPath: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsDescendant(tc.path, tc.ancestorPath); got != tc.want {
				t.Errorf("IsDescendant(%q, %q) = %v, want %v", tc.path, tc.ancestorPath, got, tc.want)
			}
		})
	}
}

func TestRebasePath(t *testing.T) {
	got := RebasePath("/root/B1/B1a", "/root/B1", "/root/B2/B1")
	if got != "/root/B2/B1/B1a" {
		t.Fatalf("RebasePath = %q, want %q", got, "/root/B2/B1/B1a")
	}

	if got := RebasePath("/root/B1", "/root/B1", "/B1"); got != "/B1" {
		t.Fatalf("RebasePath on subtree root = %q, want %q", got, "/B1")
	}
}

func TestChildPath(t *testing.T) {
	if got := ChildPath("/root", "B1"); got != "/root/B1" {
		t.Fatalf("ChildPath = %q, want %q", got, "/root/B1")
	}
	if got := RootPath("root"); got != "/root" {
		t.Fatalf("RootPath = %q, want %q", got, "/root")
	}
}
