package presentation

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"dronefleet/internal/fleet/domain"
)

type column struct {
	field domain.FieldName
	title string
}

var predefinedColumns = map[domain.EntityKey][]column{
	domain.EntityDrones: {
		{"id", "ID"}, {"name", "Name"}, {"weight", "Weight"},
	},
	domain.EntityPilots: {
		{"id", "ID"}, {"name", "Name"}, {"age", "Age"},
	},
	domain.EntityFlights: {
		{"id", "ID"}, {"pilot_id", "Pilot ID"}, {"drone_id", "Drone ID"},
		{"flight_location", "Flight Location"}, {"footage_recorded", "Footage Recorded"},
	},
}

func columnsFor(entityType domain.EntityType) []column {
	if cols, ok := predefinedColumns[entityType.Key]; ok {
		return cols
	}
	cols := []column{{domain.IdentifierField, domain.IdentifierLabel.String()}}
	for _, f := range entityType.Fields {
		cols = append(cols, column{f.Name, f.Label.String()})
	}
	return cols
}

// RenderTable renders a list of entities. Rows are filled from each entity's
// variant, so a heterogeneous list still lines up under the entity type's
// columns.
func RenderTable(entityType domain.EntityType, entities []domain.Entity) string {
	if len(entities) == 0 {
		return fmt.Sprintf("No %s found", entityType.Key)
	}

	cols := columnsFor(entityType)
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	fmt.Fprintln(w, strings.Join(titles, "\t"))

	for _, e := range entities {
		values := FieldValues(e)
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = values[c.field]
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

// FieldValues returns the display value of every wire field of an entity.
func FieldValues(e domain.Entity) map[domain.FieldName]string {
	id := strconv.Itoa(int(e.EntityID()))
	switch v := e.(type) {
	case domain.Drone:
		return map[domain.FieldName]string{
			"id":     id,
			"name":   v.Name,
			"weight": strconv.FormatFloat(v.Weight, 'f', -1, 64),
		}
	case domain.Pilot:
		values := map[domain.FieldName]string{
			"id":   id,
			"name": v.Name,
			"age":  strconv.Itoa(v.Age),
		}
		if v.FlightsRecorded != nil {
			values["flights_recorded"] = strconv.Itoa(*v.FlightsRecorded)
		}
		return values
	case domain.Flight:
		values := map[domain.FieldName]string{
			"id":               id,
			"pilot_id":         strconv.Itoa(int(v.PilotID)),
			"drone_id":         strconv.Itoa(int(v.DroneID)),
			"flight_location":  v.FlightLocation,
			"footage_recorded": yesNo(v.FootageRecorded),
		}
		if !v.FlightDate.IsZero() {
			values["flight_date"] = v.FlightDate.Format("2006-01-02")
		}
		return values
	case domain.Unclassified:
		values := make(map[domain.FieldName]string, len(v.Record))
		for k, raw := range v.Record {
			if b, ok := raw.(bool); ok {
				values[domain.FieldName(k)] = yesNo(b)
				continue
			}
			values[domain.FieldName(k)] = scalar(raw)
		}
		return values
	default:
		return map[domain.FieldName]string{"id": id}
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
