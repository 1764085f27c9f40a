package fetch

import "testing"

func TestDomain(t *testing.T) {
	cases := []struct {
		url, want string
	}{
		{"https://www.nbcsports.com/olympics/story", "nbcsports.com"},
		{"https://apnews.com/article/x", "apnews.com"},
		{"http://www.bbc.co.uk/sport", "bbc.co.uk"},
		{"not a url", ""},
	}
	for _, c := range cases {
		if got := Domain(c.url); got != c.want {
			t.Errorf("Domain(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}

func TestSkipped(t *testing.T) {
	skipped := []string{
		"https://www.youtube.com/watch?v=abc",
		"https://twitter.com/user/status/1",
		"https://x.com/user/status/1",
		"https://www.reddit.com/r/olympics",
	}
	for _, url := range skipped {
		if !Skipped(url) {
			t.Errorf("Skipped(%q) = false, want true", url)
		}
	}

	kept := []string{
		"https://www.nbcsports.com/olympics",
		"https://apnews.com/article/x",
	}
	for _, url := range kept {
		if Skipped(url) {
			t.Errorf("Skipped(%q) = true, want false", url)
		}
	}
}
