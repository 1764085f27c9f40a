package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stosh99/olympics_tv/internal/model"
)

type mockStore struct {
	ec  *model.EventContext
	err error
}

func (m *mockStore) EventContext(ctx context.Context, code string) (*model.EventContext, error) {
	return m.ec, m.err
}

func (m *mockStore) CountryNames(ctx context.Context, nocs []string) (map[string]string, error) {
	names := map[string]string{
		"USA": "United States", "NOR": "Norway", "GER": "Germany",
		"JPN": "Japan", "ITA": "Italy", "CAN": "Canada",
	}
	out := make(map[string]string)
	for _, n := range nocs {
		if name, ok := names[n]; ok {
			out[n] = name
		}
	}
	return out, nil
}

func pos(p int) *int { return &p }

func medalContext() *model.EventContext {
	return &model.EventContext{
		EventUnitCode: "BTHM10KMSP--------FNL-000100--",
		Discipline:    "Biathlon",
		Event:         "Men's 10km Sprint",
		UnitName:      "Men's 10km Sprint",
		StartTime:     time.Date(2026, 2, 14, 14, 30, 0, 0, time.UTC),
		MedalFlag:     true,
		Results: []model.Result{
			{CompetitorName: "A", NOC: "NOR", Position: pos(1), MedalType: model.MedalGold},
			{CompetitorName: "B", NOC: "GER", Position: pos(2), MedalType: model.MedalSilver},
			{CompetitorName: "C", NOC: "ITA", Position: pos(3), MedalType: model.MedalBronze},
		},
	}
}

func queryTypes(queries []model.Query) []string {
	types := make([]string, len(queries))
	for i, q := range queries {
		types[i] = q.Type
	}
	return types
}

func TestResolve_MedalEvent(t *testing.T) {
	r := New(&mockStore{ec: medalContext()})

	resolved, err := r.Resolve(context.Background(), "BTHM10KMSP--------FNL-000100--")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// general + three medal countries + USA fallback
	want := []string{"general", "gold_country", "silver_country", "bronze_country", "usa"}
	got := queryTypes(resolved.Queries)
	if len(got) != len(want) {
		t.Fatalf("Resolve() query types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Resolve() query[%d].Type = %q, want %q", i, got[i], want[i])
		}
	}

	if resolved.Queries[1].Query != "Norway Biathlon Men's 10km Sprint 2026 Olympics" {
		t.Errorf("gold query = %q", resolved.Queries[1].Query)
	}
	if resolved.EventDate != "February 14, 2026" {
		t.Errorf("EventDate = %q", resolved.EventDate)
	}
}

func TestResolve_DedupesRepeatNOC(t *testing.T) {
	ec := medalContext()
	ec.Results = []model.Result{
		{NOC: "JPN", Position: pos(1), MedalType: model.MedalGold},
		{NOC: "JPN", Position: pos(2), MedalType: model.MedalSilver},
		{NOC: "USA", Position: pos(3), MedalType: model.MedalBronze},
	}
	r := New(&mockStore{ec: ec})

	resolved, err := r.Resolve(context.Background(), ec.EventUnitCode)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// general + JPN once + USA bronze; no separate USA fallback.
	if len(resolved.Queries) != 3 {
		t.Fatalf("Resolve() queries = %v, want 3", queryTypes(resolved.Queries))
	}
	for _, q := range resolved.Queries {
		if q.Type == "usa" {
			t.Errorf("unexpected usa fallback query when USA already medalled")
		}
	}
}

func TestResolve_USAGoldSuppressesFallback(t *testing.T) {
	ec := medalContext()
	ec.Results[0].NOC = "USA"
	r := New(&mockStore{ec: ec})

	resolved, err := r.Resolve(context.Background(), ec.EventUnitCode)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	got := queryTypes(resolved.Queries)
	for _, typ := range got {
		if typ == "usa" {
			t.Errorf("Resolve() query types = %v, usa fallback should be suppressed", got)
		}
	}
}

func TestResolve_NonMedalWinnerFallback(t *testing.T) {
	ec := medalContext()
	ec.MedalFlag = false
	ec.UnitName = "Semifinal 1"
	ec.Results = []model.Result{
		{NOC: "CAN", WinnerLoserTie: "W"},
		{NOC: "GER", WinnerLoserTie: "L"},
	}
	r := New(&mockStore{ec: ec})

	resolved, err := r.Resolve(context.Background(), ec.EventUnitCode)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	got := queryTypes(resolved.Queries)
	want := []string{"general", "winner_country", "usa"}
	if len(got) != len(want) {
		t.Fatalf("Resolve() query types = %v, want %v", got, want)
	}
	if resolved.Queries[0].Query != "Biathlon Men's 10km Sprint Semifinal 1 2026 Winter Olympics results" {
		t.Errorf("general query = %q", resolved.Queries[0].Query)
	}
	if resolved.Queries[1].NOC != "CAN" {
		t.Errorf("winner NOC = %q, want CAN", resolved.Queries[1].NOC)
	}
}

func TestResolve_EmptyResults(t *testing.T) {
	ec := medalContext()
	ec.Results = nil
	r := New(&mockStore{ec: ec})

	resolved, err := r.Resolve(context.Background(), ec.EventUnitCode)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	got := queryTypes(resolved.Queries)
	want := []string{"general", "usa"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Resolve() query types = %v, want %v", got, want)
	}
}

func TestResolve_StoreError(t *testing.T) {
	r := New(&mockStore{err: errors.New("connection refused")})
	if _, err := r.Resolve(context.Background(), "X"); err == nil {
		t.Errorf("Resolve() error = nil, want error")
	}
}

func TestBuildEventLabel(t *testing.T) {
	cases := []struct {
		discipline, event, want string
	}{
		{"Curling", "Curling Mixed Doubles", "Curling Mixed Doubles"},
		{"Biathlon", "Men's 10km Sprint", "Biathlon Men's 10km Sprint"},
		{"Ice Hockey", "Men's Ice Hockey", "Men's Ice Hockey"},
	}
	for _, c := range cases {
		if got := BuildEventLabel(c.discipline, c.event); got != c.want {
			t.Errorf("BuildEventLabel(%q, %q) = %q, want %q", c.discipline, c.event, got, c.want)
		}
	}
}

func TestPreviewQueries(t *testing.T) {
	unit := &model.PendingEvent{
		EventUnitCode: "CURMD-------------RR--000100--",
		Discipline:    "Curling",
		Event:         "Curling Mixed Doubles",
		UnitName:      "Round Robin Session 1",
		StartTime:     time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC),
		MedalFlag:     false,
	}

	resolved := PreviewQueries(unit)
	got := queryTypes(resolved.Queries)
	want := []string{"preview", "contenders", "usa"}
	if len(got) != 3 {
		t.Fatalf("PreviewQueries() types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PreviewQueries() query[%d].Type = %q, want %q", i, got[i], want[i])
		}
	}
	if resolved.Queries[0].Query != "Curling Mixed Doubles 2026 Winter Olympics preview" {
		t.Errorf("preview query = %q", resolved.Queries[0].Query)
	}
}
