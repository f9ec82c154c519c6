package httpserver

import (
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
)

var _ = ginkgo.Describe("Metrics", func() {
	ginkgo.Context("MetricsMiddleware", func() {
		ginkgo.It("should collect metrics and keep the handler's response", func() {
			reader := metric.NewManualReader()
			provider := metric.NewMeterProvider(metric.WithReader(reader))
			otel.SetMeterProvider(provider)

			ResetMetricsForTesting()

			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte("test response"))
			})

			handler := MetricsMiddleware()(testHandler)

			req := httptest.NewRequest(http.MethodPost, "/drones", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusCreated))
			gomega.Expect(w.Body.String()).To(gomega.Equal("test response"))
			gomega.Expect(IsMetricsInitialized()).To(gomega.BeTrue())
		})
	})

	ginkgo.DescribeTable("normalizeEndpoint",
		func(path, expected string) {
			gomega.Expect(normalizeEndpoint(path)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("root", "/", "root"),
		ginkgo.Entry("empty", "", "root"),
		ginkgo.Entry("collection", "/drones", "/drones"),
		ginkgo.Entry("search", "/pilots/search", "/pilots/search"),
		ginkgo.Entry("numeric identifier", "/flights/7", "/flights/{id}"),
		ginkgo.Entry("nested identifiers", "/pilots/3/flights/12", "/pilots/{id}/flights/{id}"),
		ginkgo.Entry("uuid", "/users/123e4567-e89b-12d3-a456-426614174000/roles", "/users/{id}/roles"),
		ginkgo.Entry("version prefix stays", "/v2/drones", "/v2/drones"),
	)

	ginkgo.Context("ResponseWriter", func() {
		var (
			recorder      *httptest.ResponseRecorder
			wrappedWriter *responseWriter
		)

		ginkgo.BeforeEach(func() {
			recorder = httptest.NewRecorder()
			wrappedWriter = &responseWriter{ResponseWriter: recorder, statusCode: http.StatusOK}
		})

		ginkgo.It("should handle WriteHeader correctly", func() {
			wrappedWriter.WriteHeader(http.StatusNotFound)
			gomega.Expect(wrappedWriter.statusCode).To(gomega.Equal(http.StatusNotFound))
			gomega.Expect(recorder.Code).To(gomega.Equal(http.StatusNotFound))
		})

		ginkgo.It("should handle Write correctly", func() {
			_, err := wrappedWriter.Write([]byte("test"))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(recorder.Body.String()).To(gomega.Equal("test"))
		})
	})
})
