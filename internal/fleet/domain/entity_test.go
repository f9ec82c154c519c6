package domain_test

import (
	"dronefleet/internal/fleet/domain"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Classify", func() {
	ginkgo.DescribeTable("priority ordered discrimination",
		func(record domain.Record, expected domain.Entity) {
			gomega.Expect(domain.Classify(record)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("weight makes a drone",
			domain.Record{"weight": 500, "id": 1, "name": "X"},
			domain.Drone{ID: 1, Name: "X", Weight: 500}),
		ginkgo.Entry("age makes a pilot",
			domain.Record{"age": 30, "id": 1, "name": "Y"},
			domain.Pilot{ID: 1, Name: "Y", Age: 30}),
		ginkgo.Entry("flight_date makes a flight",
			domain.Record{"flight_date": "2024-01-01", "id": 1, "drone_id": 1, "pilot_id": 1},
			domain.Flight{ID: 1, FlightDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DroneID: 1, PilotID: 1}),
		ginkgo.Entry("a bare identifier is unclassified",
			domain.Record{"id": 1},
			domain.Unclassified{Record: domain.Record{"id": 1}}),
		ginkgo.Entry("weight wins over age",
			domain.Record{"weight": 2.5, "age": 30, "id": 3},
			domain.Drone{ID: 3, Weight: 2.5}),
		ginkgo.Entry("age wins over flight_date",
			domain.Record{"age": 30, "flight_date": "2024-01-01", "id": 4},
			domain.Pilot{ID: 4, Age: 30}),
		ginkgo.Entry("a non numeric weight is not a drone",
			domain.Record{"weight": "heavy", "id": 5},
			domain.Unclassified{Record: domain.Record{"weight": "heavy", "id": 5}}),
		ginkgo.Entry("a null flight_date is not a flight",
			domain.Record{"flight_date": nil, "id": 6},
			domain.Unclassified{Record: domain.Record{"flight_date": nil, "id": 6}}),
	)

	ginkgo.It("should keep the optional flights_recorded of a pilot", func() {
		entity := domain.Classify(domain.Record{"id": 2, "age": 41, "flights_recorded": 12})

		pilot, ok := entity.(domain.Pilot)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(pilot.FlightsRecorded).NotTo(gomega.BeNil())
		gomega.Expect(*pilot.FlightsRecorded).To(gomega.Equal(12))
	})

	ginkgo.It("should let the predicates overlap", func() {
		record := domain.Record{"weight": 1, "age": 30, "flight_date": "2024-01-01"}
		gomega.Expect(domain.IsDrone(record)).To(gomega.BeTrue())
		gomega.Expect(domain.IsPilot(record)).To(gomega.BeTrue())
		gomega.Expect(domain.IsFlight(record)).To(gomega.BeTrue())
		gomega.Expect(domain.IsFlight(domain.Record{"flight_date": nil})).To(gomega.BeFalse())
	})

	ginkgo.It("should report the entity key of each variant", func() {
		gomega.Expect(domain.Drone{}.Kind()).To(gomega.Equal(domain.EntityDrones))
		gomega.Expect(domain.Pilot{}.Kind()).To(gomega.Equal(domain.EntityPilots))
		gomega.Expect(domain.Flight{}.Kind()).To(gomega.Equal(domain.EntityFlights))
		gomega.Expect(domain.Unclassified{}.Kind()).To(gomega.BeEmpty())
	})
})

var _ = ginkgo.Describe("DecodeEntities", func() {
	ginkgo.It("should classify and sort a list payload by identifier", func() {
		payload := []byte(`{"data":[
			{"id":3,"flight_date":"2024-05-01T10:00:00Z","drone_id":1,"pilot_id":2,"flight_location":"Lima","footage_recorded":true},
			{"id":1,"name":"Falcon","weight":500},
			{"id":2,"name":"Ana","age":30}
		]}`)

		entities, err := domain.DecodeEntities(payload)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(entities).To(gomega.HaveLen(3))
		gomega.Expect(entities[0]).To(gomega.Equal(domain.Drone{ID: 1, Name: "Falcon", Weight: 500}))
		gomega.Expect(entities[1]).To(gomega.Equal(domain.Pilot{ID: 2, Name: "Ana", Age: 30}))

		flight, ok := entities[2].(domain.Flight)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(flight.FlightLocation).To(gomega.Equal("Lima"))
		gomega.Expect(flight.FootageRecorded).To(gomega.BeTrue())
		gomega.Expect(flight.FlightDate.Year()).To(gomega.Equal(2024))
	})

	ginkgo.It("should return an empty list for an empty data array", func() {
		entities, err := domain.DecodeEntities([]byte(`{"data":[]}`))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(entities).To(gomega.BeEmpty())
	})

	ginkgo.It("should fail on malformed JSON", func() {
		_, err := domain.DecodeEntities([]byte(`{"data":`))
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
