package cli_test

import (
	"bytes"
	"context"
	"dronefleet/internal/fleet/cli"
	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/forms"
	"dronefleet/internal/fleet/usecases"
	"dronefleet/internal/infra/httpclient"
	mockusecases "dronefleet/test/unit/doubles/fleet/usecases"
	"errors"
	"net/http"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("App", func() {
	var (
		ctrl         *gomock.Controller
		mockAuth     *mockusecases.MockAuthService
		mockEntities *mockusecases.MockEntityService
		stdout       *bytes.Buffer
		stderr       *bytes.Buffer
		app          *cli.App
		ctx          context.Context
	)

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		mockAuth = mockusecases.NewMockAuthService(ctrl)
		mockEntities = mockusecases.NewMockEntityService(ctrl)
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		ctx = context.Background()

		registry, err := domain.NewDefaultRegistry()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		app = cli.NewApp(registry, mockAuth, mockEntities).
			WithOutput(stdout, stderr).
			WithRegisterer(prometheus.NewRegistry())
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	run := func(args ...string) int {
		return app.Run(ctx, args)
	}

	ginkgo.Context("dispatch", func() {
		ginkgo.It("should print the usage without a command", func() {
			gomega.Expect(run()).To(gomega.Equal(cli.ExitUsage))
			gomega.Expect(stderr.String()).To(gomega.ContainSubstring("commands:"))
		})

		ginkgo.It("should reject an unknown command", func() {
			gomega.Expect(run("launch")).To(gomega.Equal(cli.ExitUsage))
			gomega.Expect(stderr.String()).To(gomega.ContainSubstring(`unknown command "launch"`))
		})

		ginkgo.It("should list the entity types in registry order", func() {
			gomega.Expect(run("types")).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.Equal("Drones\nPilots\nFlights\n"))
		})
	})

	ginkgo.Context("authentication", func() {
		ginkgo.It("should log in", func() {
			mockAuth.EXPECT().Login(gomock.Any(), "alice", "pw").Return(nil)

			gomega.Expect(run("login", "--username", "alice", "--password", "pw")).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.Equal("Logged in as alice\n"))
		})

		ginkgo.It("should show the canned message when the login fails", func() {
			mockAuth.EXPECT().Login(gomock.Any(), "alice", "bad").
				Return(errors.Join(usecases.ErrLoginFailed, &httpclient.APIError{StatusCode: http.StatusUnauthorized}))

			gomega.Expect(run("login", "-u", "alice", "-p", "bad")).To(gomega.Equal(cli.ExitFailure))
			gomega.Expect(stderr.String()).To(gomega.Equal("Failed to login. Please check your username and password.\n"))
		})

		ginkgo.It("should treat missing credentials as a usage error", func() {
			gomega.Expect(run("login", "--username", "alice")).To(gomega.Equal(cli.ExitUsage))
		})

		ginkgo.It("should show the canned message when the registration fails", func() {
			mockAuth.EXPECT().Register(gomock.Any(), "bob", "pw", "admin, pilot").Return(nil, usecases.ErrRegistrationFailed)

			gomega.Expect(run("register", "-u", "bob", "-p", "pw", "--roles", "admin, pilot")).To(gomega.Equal(cli.ExitFailure))
			gomega.Expect(stderr.String()).To(gomega.Equal("Failed to register. Please try again.\n"))
		})

		ginkgo.It("should log out", func() {
			mockAuth.EXPECT().Logout(gomock.Any()).Return(nil)

			gomega.Expect(run("logout")).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.Equal("You have logged out\n"))
		})

		ginkgo.It("should print the current user", func() {
			mockAuth.EXPECT().CurrentUser(gomock.Any()).Return(usecases.GuestUsername, nil)

			gomega.Expect(run("whoami")).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.Equal("Guest\n"))
		})
	})

	ginkgo.Context("fields", func() {
		ginkgo.It("should mark the mandatory create fields", func() {
			gomega.Expect(run("fields", "Drones")).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.Equal("Drone Name *: \nWeight * (number): \n"))
		})

		ginkgo.It("should lead the update form with the identifier", func() {
			gomega.Expect(run("fields", "flights", "--op", "update")).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.HavePrefix("ID * (number): \nPilot ID (number): "))
		})

		ginkgo.It("should reject an unknown operation", func() {
			gomega.Expect(run("fields", "Drones", "--op", "launch")).To(gomega.Equal(cli.ExitUsage))
		})
	})

	ginkgo.Context("list", func() {
		ginkgo.It("should render the table of the type", func() {
			mockEntities.EXPECT().List(gomock.Any(), domain.EntityDrones).
				Return([]domain.Entity{domain.Drone{ID: 1, Name: "Falcon", Weight: 500}}, nil)

			gomega.Expect(run("list", "drones")).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.ContainSubstring("Falcon"))
		})

		ginkgo.It("should report an unknown entity type", func() {
			gomega.Expect(run("list", "Hangars")).To(gomega.Equal(cli.ExitFailure))
			gomega.Expect(stderr.String()).To(gomega.Equal("Unknown entity type: Hangars\n"))
		})

		ginkgo.It("should report API failures with the canned text", func() {
			mockEntities.EXPECT().List(gomock.Any(), domain.EntityPilots).
				Return(nil, &httpclient.APIError{StatusCode: http.StatusInternalServerError})

			gomega.Expect(run("list", "Pilots")).To(gomega.Equal(cli.ExitFailure))
			gomega.Expect(stderr.String()).To(gomega.Equal("An internal server error occurred.\n"))
		})

		ginkgo.It("should refuse a metrics address without watch", func() {
			gomega.Expect(run("list", "Pilots", "--metrics-addr", ":0")).To(gomega.Equal(cli.ExitUsage))
		})

		ginkgo.It("should refresh on start and stop with the context", func() {
			watchCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			mockEntities.EXPECT().Refresh(gomock.Any(), domain.EntityDrones).
				DoAndReturn(func(context.Context, domain.EntityKey) ([]domain.Entity, error) {
					cancel()
					return []domain.Entity{domain.Drone{ID: 2, Name: "Hawk", Weight: 3}}, nil
				})

			code := app.Run(watchCtx, []string{"list", "Drones", "--watch", "@every 1h"})
			gomega.Expect(code).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.ContainSubstring("Hawk"))
		})

		ginkgo.It("should reject an invalid schedule", func() {
			gomega.Expect(run("list", "Drones", "--watch", "every now and then")).To(gomega.Equal(cli.ExitUsage))
		})
	})

	ginkgo.Context("create, update, delete and find", func() {
		ginkgo.It("should create from name=value arguments", func() {
			mockEntities.EXPECT().Create(gomock.Any(), domain.EntityDrones, forms.Values{"name": "Falcon", "weight": float64(500)}).
				Return(map[string]any{"id": 1, "name": "Falcon", "weight": 500}, nil)

			gomega.Expect(run("create", "Drones", "name=Falcon", "weight=500")).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.Equal("Id: 1\nName: Falcon\nWeight: 500\n"))
		})

		ginkgo.It("should name the first missing field without calling the API", func() {
			gomega.Expect(run("create", "Drones", "name=Falcon")).To(gomega.Equal(cli.ExitFailure))
			gomega.Expect(stderr.String()).To(gomega.Equal("Weight is required.\n"))
		})

		ginkgo.It("should ask to log in when the session has no token", func() {
			mockEntities.EXPECT().Create(gomock.Any(), domain.EntityDrones, gomock.Any()).
				Return(nil, domain.ErrUnauthenticated)

			gomega.Expect(run("create", "Drones", "name=Falcon", "weight=1")).To(gomega.Equal(cli.ExitFailure))
			gomega.Expect(stderr.String()).To(gomega.Equal("Authentication required to manage Drones, please log in\n"))
		})

		ginkgo.It("should treat malformed assignments as usage errors", func() {
			gomega.Expect(run("create", "Drones", "name")).To(gomega.Equal(cli.ExitUsage))
			gomega.Expect(run("create", "Drones", "colour=red")).To(gomega.Equal(cli.ExitUsage))
		})

		ginkgo.It("should update the identified entity", func() {
			mockEntities.EXPECT().Update(gomock.Any(), domain.EntityFlights, domain.ID(7), gomock.Any()).
				Return(map[string]any{"id": 7, "footage_recorded": true}, nil)

			gomega.Expect(run("update", "Flights", "id=7", "footage_recorded=true")).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.Equal("Id: 7\nFootage recorded: true\n"))
		})

		ginkgo.It("should delete by positional identifier", func() {
			mockEntities.EXPECT().Delete(gomock.Any(), domain.EntityPilots, domain.ID(3)).Return(nil, nil)

			gomega.Expect(run("delete", "Pilots", "3")).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.Equal("Pilot deleted.\n"))
		})

		ginkgo.It("should reject a non numeric identifier", func() {
			gomega.Expect(run("delete", "Pilots", "abc")).To(gomega.Equal(cli.ExitFailure))
			gomega.Expect(stderr.String()).To(gomega.Equal("ID must be a valid number.\n"))
		})

		ginkgo.It("should render the search results", func() {
			mockEntities.EXPECT().Find(gomock.Any(), domain.EntityPilots, forms.Values{"name": "Smith"}).
				Return([]domain.Entity{domain.Pilot{ID: 4, Name: "Smith", Age: 41}}, nil)

			gomega.Expect(run("find", "Pilots", "name=Smith")).To(gomega.Equal(cli.ExitOK))
			gomega.Expect(stdout.String()).To(gomega.ContainSubstring("Smith"))
		})
	})
})
