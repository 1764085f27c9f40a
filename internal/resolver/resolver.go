package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/stosh99/olympics_tv/internal/model"
)

// Store is the read access the resolver needs.
type Store interface {
	EventContext(ctx context.Context, eventUnitCode string) (*model.EventContext, error)
	CountryNames(ctx context.Context, nocs []string) (map[string]string, error)
}

// Resolver turns an event unit code into the ranked, deduplicated search
// queries and the ground-truth result rows the rest of the pipeline uses.
// Query construction is a pure function of the event context, so the set is
// reconstructible at any time.
type Resolver struct {
	store Store
}

// New creates a Resolver.
func New(store Store) *Resolver { return &Resolver{store: store} }

// Tiers in emission order. Winner only applies to non-medal events.
var tierOrder = []string{"gold", "silver", "bronze", "winner"}

// Resolve loads the event and builds its search queries:
// one general query, one per distinct medal (or winner) NOC, and a USA
// query unless USA is already covered.
func (r *Resolver) Resolve(ctx context.Context, eventUnitCode string) (*model.ResolvedSources, error) {
	ec, err := r.store.EventContext(ctx, eventUnitCode)
	if err != nil {
		return nil, err
	}

	label := BuildEventLabel(ec.Discipline, ec.Event)
	nocs := medalNOCs(ec.Results)

	var codes []string
	for _, tier := range tierOrder {
		if noc, ok := nocs[tier]; ok {
			codes = append(codes, noc)
		}
	}
	countryNames, err := r.store.CountryNames(ctx, codes)
	if err != nil {
		return nil, err
	}

	var queries []model.Query

	// General coverage. Non-medal events include the unit name for
	// specificity, since the event name alone is often a whole bracket.
	general := fmt.Sprintf("%s 2026 Winter Olympics results", label)
	if !ec.MedalFlag {
		general = fmt.Sprintf("%s %s 2026 Winter Olympics results", label, ec.UnitName)
	}
	queries = append(queries, model.Query{
		Type:   "general",
		Query:  general,
		Reason: "Main event coverage",
	})

	usaCovered := false
	seen := make(map[string]bool)
	for _, tier := range tierOrder {
		noc, ok := nocs[tier]
		if !ok || seen[noc] {
			continue
		}
		seen[noc] = true
		country := countryNames[noc]
		if country == "" {
			country = noc
		}
		if noc == "USA" {
			usaCovered = true
		}
		queries = append(queries, model.Query{
			Type:   tier + "_country",
			NOC:    noc,
			Query:  fmt.Sprintf("%s %s 2026 Olympics", country, label),
			Reason: fmt.Sprintf("%s medal country perspective", capitalize(tier)),
		})
	}

	if !usaCovered {
		queries = append(queries, model.Query{
			Type:   "usa",
			NOC:    "USA",
			Query:  fmt.Sprintf("Team USA %s 2026 Olympics", label),
			Reason: "US audience perspective",
		})
	}

	return &model.ResolvedSources{
		EventUnitCode: eventUnitCode,
		EventLabel:    label,
		EventDate:     ec.StartTime.Format("January 2, 2006"),
		Discipline:    ec.Discipline,
		UnitName:      ec.UnitName,
		StartTime:     ec.StartTime,
		IsMedalEvent:  ec.MedalFlag,
		Results:       ec.Results,
		Queries:       queries,
	}, nil
}

// PreviewQueries builds the fixed query set for a pre-event preview. No
// database round trip is needed beyond the unit row itself.
func PreviewQueries(unit *model.PendingEvent) *model.ResolvedSources {
	label := BuildEventLabel(unit.Discipline, unit.Event)

	queries := []model.Query{
		{
			Type:   "preview",
			Query:  fmt.Sprintf("%s 2026 Winter Olympics preview", label),
			Reason: "General event preview",
		},
		{
			Type:   "contenders",
			Query:  fmt.Sprintf("%s 2026 Olympics favorites contenders", label),
			Reason: "Key athletes and favorites",
		},
		{
			Type:   "usa",
			NOC:    "USA",
			Query:  fmt.Sprintf("Team USA %s 2026 Olympics", label),
			Reason: "US athlete perspective",
		},
	}

	return &model.ResolvedSources{
		EventUnitCode: unit.EventUnitCode,
		EventLabel:    label,
		Discipline:    unit.Discipline,
		UnitName:      unit.UnitName,
		StartTime:     unit.StartTime,
		IsMedalEvent:  unit.MedalFlag,
		Queries:       queries,
	}
}

// BuildEventLabel derives a clean label for search queries. When the event
// name already contains the discipline ("Curling Mixed Doubles"), the event
// name stands alone; otherwise the two are concatenated.
func BuildEventLabel(discipline, event string) string {
	if strings.Contains(strings.ToLower(event), strings.ToLower(discipline)) {
		return event
	}
	return discipline + " " + event
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// medalNOCs extracts at most one NOC per medal tier. Non-medal events fall
// back to a single winner NOC from the win/loss/tie marker or a first-place
// finish.
func medalNOCs(results []model.Result) map[string]string {
	nocs := make(map[string]string)
	for _, r := range results {
		switch {
		case r.MedalType == model.MedalGold && nocs["gold"] == "":
			nocs["gold"] = r.NOC
		case r.MedalType == model.MedalSilver && nocs["silver"] == "":
			nocs["silver"] = r.NOC
		case r.MedalType == model.MedalBronze && nocs["bronze"] == "":
			nocs["bronze"] = r.NOC
		}
	}

	if len(nocs) == 0 {
		for _, r := range results {
			if nocs["winner"] != "" {
				break
			}
			if r.WinnerLoserTie == "W" {
				nocs["winner"] = r.NOC
			} else if r.Position != nil && *r.Position == 1 {
				nocs["winner"] = r.NOC
			}
		}
	}

	// Drop empty keys so lookups behave.
	for k, v := range nocs {
		if v == "" {
			delete(nocs, k)
		}
	}
	return nocs
}
