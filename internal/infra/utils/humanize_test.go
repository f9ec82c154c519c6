package utils_test

import (
	"dronefleet/internal/infra/utils"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("HumanizeKey", func() {
	ginkgo.Context("with snake_case keys", func() {
		ginkgo.It("should replace underscores with spaces", func() {
			gomega.Expect(utils.HumanizeKey("flight_location")).To(gomega.Equal("Flight location"))
		})

		ginkgo.It("should capitalize single words", func() {
			gomega.Expect(utils.HumanizeKey("weight")).To(gomega.Equal("Weight"))
		})

		ginkgo.It("should handle a single character", func() {
			gomega.Expect(utils.HumanizeKey("a")).To(gomega.Equal("A"))
		})
	})

	ginkgo.Context("with edge cases", func() {
		ginkgo.It("should return an empty string unchanged", func() {
			gomega.Expect(utils.HumanizeKey("")).To(gomega.Equal(""))
		})

		ginkgo.It("should leave display labels unchanged", func() {
			gomega.Expect(utils.HumanizeKey("Already Nice")).To(gomega.Equal("Already Nice"))
		})

		ginkgo.It("should keep leading underscores as spaces", func() {
			gomega.Expect(utils.HumanizeKey("_private")).To(gomega.Equal(" private"))
		})
	})
})

var _ = ginkgo.Describe("SplitAndTrim", func() {
	ginkgo.It("should trim every element", func() {
		gomega.Expect(utils.SplitAndTrim("admin, pilot")).To(gomega.Equal([]string{"admin", "pilot"}))
	})

	ginkgo.It("should drop empty elements", func() {
		gomega.Expect(utils.SplitAndTrim("admin,, ")).To(gomega.Equal([]string{"admin"}))
	})

	ginkgo.It("should return an empty slice for empty input", func() {
		gomega.Expect(utils.SplitAndTrim("")).To(gomega.BeEmpty())
	})
})
