package commands

import "testing"

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCommand()
	want := map[string]bool{
		"init": false, "scan": false, "analyze": false, "map": false,
		"plan": false, "serve": false, "tui": false, "progress": false, "cards": false,
		"quiz": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
	if flag := root.PersistentFlags().Lookup("dir"); flag == nil {
		t.Error("missing --dir persistent flag")
	}
}

func TestCardsSubcommands(t *testing.T) {
	cards := newCardsCommand()
	names := map[string]bool{}
	for _, cmd := range cards.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"generate", "due", "review"} {
		if !names[want] {
			t.Errorf("cards missing %q", want)
		}
	}
}

func TestQuizSubcommands(t *testing.T) {
	cmd := newQuizCommand()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"generate", "exam", "take", "history", "stats"} {
		if !names[want] {
			t.Errorf("quiz missing %q", want)
		}
	}
}

func TestParseAnswer(t *testing.T) {
	cases := []struct {
		in   string
		idx  int
		ok   bool
	}{
		{"a", 0, true},
		{"D", 3, true},
		{" b ", 1, true},
		{"2", 1, true},
		{"", 0, false},
		{"e", 0, false},
		{"5", 0, false},
		{"ab", 0, false},
	}
	for _, c := range cases {
		idx, ok := parseAnswer(c.in)
		if idx != c.idx || ok != c.ok {
			t.Errorf("parseAnswer(%q) = (%d, %v), want (%d, %v)", c.in, idx, ok, c.idx, c.ok)
		}
	}
}
