package usecases_test

import (
	"context"
	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/forms"
	"dronefleet/internal/fleet/usecases"
	mockusecases "dronefleet/test/unit/doubles/fleet/usecases"
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("ManagementSession", func() {
	var (
		ctrl         *gomock.Controller
		mockEntities *mockusecases.MockEntityService
		registry     *domain.Registry
		ctx          context.Context
	)

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		mockEntities = mockusecases.NewMockEntityService(ctrl)
		ctx = context.Background()

		var err error
		registry, err = domain.NewDefaultRegistry()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	newSession := func(key domain.EntityKey, op domain.Operation) *usecases.ManagementSession {
		session, err := usecases.NewManagementSession(registry, key, mockEntities)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		session.SelectOperation(op)
		return session
	}

	ginkgo.It("should reject an unknown entity type", func() {
		_, err := usecases.NewManagementSession(registry, "Hangars", mockEntities)
		gomega.Expect(err).To(gomega.MatchError(domain.ErrUnknownEntityType))
	})

	ginkgo.It("should clear the form when the operation changes", func() {
		session := newSession(domain.EntityDrones, domain.OperationCreate)
		gomega.Expect(session.State().Set("name", "Falcon")).To(gomega.Succeed())

		session.SelectOperation(domain.OperationFind)

		gomega.Expect(session.State().Len()).To(gomega.Equal(0))
		gomega.Expect(session.Operation()).To(gomega.Equal(domain.OperationFind))
	})

	ginkgo.It("should refuse to submit without an operation", func() {
		session := newSession(domain.EntityDrones, domain.OperationNone)
		_, err := session.Submit(ctx)
		gomega.Expect(err).To(gomega.MatchError(domain.ErrUnknownOperation))
	})

	ginkgo.Context("create", func() {
		ginkgo.It("should report the first missing field without calling the API", func() {
			session := newSession(domain.EntityDrones, domain.OperationCreate)
			gomega.Expect(session.State().Set("name", "Falcon")).To(gomega.Succeed())

			_, err := session.Submit(ctx)

			var fieldErr *domain.FieldError
			gomega.Expect(errors.As(err, &fieldErr)).To(gomega.BeTrue())
			gomega.Expect(fieldErr.Err).To(gomega.Equal(domain.ErrMissingRequiredField))
			gomega.Expect(fieldErr.Label).To(gomega.Equal(domain.Label("Weight")))
			gomega.Expect(session.State().Len()).To(gomega.Equal(1))
		})

		ginkgo.It("should report an invalid number without calling the API", func() {
			session := newSession(domain.EntityDrones, domain.OperationCreate)
			gomega.Expect(session.State().SetAll(map[string]string{"name": "Falcon", "weight": "heavy"})).To(gomega.Succeed())

			_, err := session.Submit(ctx)
			gomega.Expect(err).To(gomega.MatchError(domain.ErrCoercion))
		})

		ginkgo.It("should format the created entity and clear the form", func() {
			mockEntities.EXPECT().
				Create(gomock.Any(), domain.EntityDrones, forms.Values{"name": "Falcon", "weight": 500.0}).
				Return(map[string]any{"id": 1.0, "name": "Falcon", "weight": 500.0}, nil)

			session := newSession(domain.EntityDrones, domain.OperationCreate)
			gomega.Expect(session.State().SetAll(map[string]string{"name": "Falcon", "weight": "500"})).To(gomega.Succeed())

			output, err := session.Submit(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(output).To(gomega.Equal("Id: 1\nName: Falcon\nWeight: 500"))
			gomega.Expect(session.State().Len()).To(gomega.Equal(0))
		})

		ginkgo.It("should keep the form when the API call fails", func() {
			mockEntities.EXPECT().
				Create(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, domain.ErrUnauthenticated)

			session := newSession(domain.EntityDrones, domain.OperationCreate)
			gomega.Expect(session.State().SetAll(map[string]string{"name": "Falcon", "weight": "500"})).To(gomega.Succeed())

			_, err := session.Submit(ctx)
			gomega.Expect(err).To(gomega.MatchError(domain.ErrUnauthenticated))
			gomega.Expect(session.State().Len()).To(gomega.Equal(2))
		})
	})

	ginkgo.Context("update", func() {
		ginkgo.It("should require the identifier", func() {
			session := newSession(domain.EntityFlights, domain.OperationUpdate)
			gomega.Expect(session.State().Set("footage_recorded", true)).To(gomega.Succeed())

			_, err := session.Submit(ctx)
			gomega.Expect(err).To(gomega.MatchError(domain.ErrMissingRequiredField))
		})

		ginkgo.It("should pass the identifier positionally", func() {
			mockEntities.EXPECT().
				Update(gomock.Any(), domain.EntityFlights, domain.ID(7), forms.Values{"id": 7, "footage_recorded": true}).
				Return(map[string]any{"id": 7.0, "footage_recorded": true}, nil)

			session := newSession(domain.EntityFlights, domain.OperationUpdate)
			gomega.Expect(session.State().Set("id", "7")).To(gomega.Succeed())
			gomega.Expect(session.State().Set("footage_recorded", true)).To(gomega.Succeed())

			output, err := session.Submit(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(output).To(gomega.Equal("Id: 7\nFootage recorded: true"))
		})
	})

	ginkgo.Context("delete", func() {
		ginkgo.It("should confirm with the singular entity name", func() {
			mockEntities.EXPECT().
				Delete(gomock.Any(), domain.EntityPilots, domain.ID(3)).
				Return(nil, nil)

			session := newSession(domain.EntityPilots, domain.OperationDelete)
			gomega.Expect(session.Fields()).To(gomega.BeEmpty())
			gomega.Expect(session.State().Set("id", "3")).To(gomega.Succeed())

			output, err := session.Submit(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(output).To(gomega.Equal("Pilot deleted."))
		})
	})

	ginkgo.Context("find", func() {
		ginkgo.It("should render the matches as a table", func() {
			mockEntities.EXPECT().
				Find(gomock.Any(), domain.EntityPilots, forms.Values{"name": "Smith"}).
				Return([]domain.Entity{domain.Pilot{ID: 4, Name: "Smith", Age: 41}}, nil)

			session := newSession(domain.EntityPilots, domain.OperationFind)
			gomega.Expect(session.State().Set("name", "Smith")).To(gomega.Succeed())

			output, err := session.Submit(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(output).To(gomega.ContainSubstring("Smith"))
			gomega.Expect(output).To(gomega.ContainSubstring("41"))
		})
	})
})
