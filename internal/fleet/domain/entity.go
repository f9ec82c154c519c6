package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Record is an entity as decoded from the wire, before classification.
type Record map[string]any

// Entity is the closed set of variants a Record classifies into.
type Entity interface {
	EntityID() ID
	Kind() EntityKey
	isEntity()
}

type Drone struct {
	ID     ID
	Name   string
	Weight float64
}

type Pilot struct {
	ID              ID
	Name            string
	Age             int
	FlightsRecorded *int
}

type Flight struct {
	ID              ID
	FlightDate      time.Time
	DroneID         ID
	PilotID         ID
	FlightLocation  string
	FootageRecorded bool
}

// Unclassified carries a record that matched none of the variants.
type Unclassified struct {
	Record Record
}

func (d Drone) EntityID() ID        { return d.ID }
func (p Pilot) EntityID() ID        { return p.ID }
func (f Flight) EntityID() ID       { return f.ID }
func (u Unclassified) EntityID() ID { return u.Record.id() }

func (Drone) Kind() EntityKey        { return EntityDrones }
func (Pilot) Kind() EntityKey        { return EntityPilots }
func (Flight) Kind() EntityKey       { return EntityFlights }
func (Unclassified) Kind() EntityKey { return "" }

func (Drone) isEntity()        {}
func (Pilot) isEntity()        {}
func (Flight) isEntity()       {}
func (Unclassified) isEntity() {}

func IsDrone(r Record) bool {
	_, ok := r.number("weight")
	return ok
}

func IsPilot(r Record) bool {
	_, ok := r.number("age")
	return ok
}

func IsFlight(r Record) bool {
	v, ok := r["flight_date"]
	return ok && v != nil
}

// Classify evaluates the variant predicates in a fixed order: Drone, then
// Pilot, then Flight. A record matching several predicates takes the first.
func Classify(r Record) Entity {
	switch {
	case IsDrone(r):
		weight, _ := r.number("weight")
		return Drone{ID: r.id(), Name: r.stringValue("name"), Weight: weight}
	case IsPilot(r):
		age, _ := r.intValue("age")
		pilot := Pilot{ID: r.id(), Name: r.stringValue("name"), Age: age}
		if recorded, ok := r.intValue("flights_recorded"); ok {
			pilot.FlightsRecorded = &recorded
		}
		return pilot
	case IsFlight(r):
		droneID, _ := r.intValue("drone_id")
		pilotID, _ := r.intValue("pilot_id")
		footage, _ := r["footage_recorded"].(bool)
		return Flight{
			ID:              r.id(),
			FlightDate:      parseFlightDate(r.stringValue("flight_date")),
			DroneID:         ID(droneID),
			PilotID:         ID(pilotID),
			FlightLocation:  r.stringValue("flight_location"),
			FootageRecorded: footage,
		}
	default:
		return Unclassified{Record: r}
	}
}

type listEnvelope struct {
	Data []Record `json:"data"`
}

// DecodeEntities decodes a `{"data": [...]}` list payload and classifies every
// record. Entities are returned sorted by identifier.
func DecodeEntities(payload []byte) ([]Entity, error) {
	var envelope listEnvelope
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding entity list: %w", err)
	}

	entities := make([]Entity, 0, len(envelope.Data))
	for _, record := range envelope.Data {
		entities = append(entities, Classify(record))
	}
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].EntityID() < entities[j].EntityID()
	})
	return entities, nil
}

func (r Record) id() ID {
	id, _ := r.intValue("id")
	return ID(id)
}

func (r Record) number(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func (r Record) intValue(key string) (int, bool) {
	f, ok := r.number(key)
	if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}

func (r Record) stringValue(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

var flightDateLayouts = []string{time.RFC3339Nano, time.RFC3339, time.DateOnly}

func parseFlightDate(value string) time.Time {
	for _, layout := range flightDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
