package github

import "testing"

func TestSplitRepoPath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"plain repo path", "/acme/widgets", "acme", "widgets", false},
		{"no leading slash", "acme/widgets", "acme", "widgets", false},
		{"trailing slash", "/acme/widgets/", "acme", "widgets", false},
		{"extra segments ignored", "/acme/widgets/tree/main/docs", "acme", "widgets", false},
		{"git suffix stripped", "/acme/widgets.git", "acme", "widgets", false},

		{"empty path", "", "", "", true},
		{"root path", "/", "", "", true},
		{"owner only", "/acme", "", "", true},
		{"double slash", "//widgets", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := SplitRepoPath(tt.path)

			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitRepoPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if owner != tt.wantOwner {
				t.Errorf("expected owner %q, got %q", tt.wantOwner, owner)
			}
			if repo != tt.wantRepo {
				t.Errorf("expected repo %q, got %q", tt.wantRepo, repo)
			}
		})
	}
}
