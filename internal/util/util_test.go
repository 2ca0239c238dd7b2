package util

import "testing"

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Great Novel", "my_great_novel"},
		{"Sword & Sorcery: Book 2", "sword_sorcery_book_2"},
		{"A Tale — of Two (Cities)", "a_tale_of_two_cities"},
		{"path/to\\a.book", "path_to_a_book"},
		{"__already__weird__", "already_weird"},
		{"!!!", "novel"},
		{"", "novel"},
	}

	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHuman(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1 << 10, "1.00 KB"},
		{1536, "1.50 KB"},
		{5 << 20, "5.00 MB"},
		{3 << 30, "3.00 GB"},
		{2 << 40, "2.00 TB"},
	}

	for _, tc := range cases {
		if got := Human(tc.in); got != tc.want {
			t.Fatalf("Human(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
