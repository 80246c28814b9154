package constants

import "testing"

func TestMergePolicy_Valid(t *testing.T) {
	tests := []struct {
		name   string
		policy MergePolicy
		want   bool
	}{
		{name: "defer is valid", policy: MergeDefer, want: true},
		{name: "once is valid", policy: MergeOnce, want: true},
		{name: "cascade is valid", policy: MergeCascade, want: true},
		{name: "empty string is invalid", policy: MergePolicy(""), want: false},
		{name: "arbitrary string is invalid", policy: MergePolicy("sometimes"), want: false},
		{name: "ONCE uppercase is invalid", policy: MergePolicy("ONCE"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Valid(); got != tt.want {
				t.Errorf("MergePolicy(%q).Valid() = %v, want %v", tt.policy, got, tt.want)
			}
		})
	}
}

func TestMergePolicy_ReentryLimit(t *testing.T) {
	tests := []struct {
		name       string
		policy     MergePolicy
		maxCascade int
		want       int
	}{
		{"defer never re-enters", MergeDefer, 8, 0},
		{"once re-enters one time", MergeOnce, 8, 1},
		{"cascade uses bound", MergeCascade, 8, 8},
		{"cascade with zero bound still re-enters once", MergeCascade, 0, 1},
		{"unknown policy never re-enters", MergePolicy("x"), 8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.ReentryLimit(tt.maxCascade); got != tt.want {
				t.Errorf("ReentryLimit(%d) = %d, want %d", tt.maxCascade, got, tt.want)
			}
		})
	}
}

func TestMergePolicy_String(t *testing.T) {
	if got := MergeCascade.String(); got != "cascade" {
		t.Errorf("String() = %q, want %q", got, "cascade")
	}
}
